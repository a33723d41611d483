package hierarchy

// EachBefore calls fn for root and every descendant in pre-order, so a parent
// is always visited before its children. Children appended by fn to the node
// being visited are traversed too.
func EachBefore(root *Node, fn func(*Node)) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// EachAfter calls fn for root and every descendant in post-order, so all
// children are visited before their parent.
func EachAfter(root *Node, fn func(*Node)) {
	if root == nil {
		return
	}
	type frame struct {
		n    *Node
		next int
	}
	stack := []frame{{n: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.n.Children) {
			child := top.n.Children[top.next]
			top.next++
			stack = append(stack, frame{n: child})
			continue
		}
		fn(top.n)
		stack = stack[:len(stack)-1]
	}
}

// Descendants returns root and all of its descendants in pre-order.
func Descendants(root *Node) []*Node {
	var out []*Node
	EachBefore(root, func(n *Node) { out = append(out, n) })
	return out
}

// Leaves returns the leaves under root in pre-order.
func Leaves(root *Node) []*Node {
	var out []*Node
	EachBefore(root, func(n *Node) {
		if n.IsLeaf() {
			out = append(out, n)
		}
	})
	return out
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	count := 0
	EachBefore(root, func(*Node) { count++ })
	return count
}

// Find returns the node with the given path identifier. IDs are only
// available after Aggregate.
func Find(root *Node, id string) (*Node, bool) {
	var found *Node
	EachBefore(root, func(n *Node) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found, found != nil
}

// Categories returns the distinct leaf categories in the order they are first
// seen in a pre-order walk. Leaves without a category are skipped.
func Categories(root *Node) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, leaf := range Leaves(root) {
		if leaf.Category == "" {
			continue
		}
		if _, ok := seen[leaf.Category]; ok {
			continue
		}
		seen[leaf.Category] = struct{}{}
		out = append(out, leaf.Category)
	}
	return out
}
