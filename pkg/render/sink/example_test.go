package sink_test

import (
	"fmt"

	"github.com/matzehuels/treemap/pkg/hierarchy"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/treemap"
)

func ExampleSplitLabel() {
	for _, line := range sink.SplitLabel("Mario Kart Wii") {
		fmt.Printf("%q\n", line)
	}
	// Output:
	// "Mario "
	// "Kart "
	// "Wii"
}

func ExampleRenderSVG() {
	root := hierarchy.Branch("Movies",
		hierarchy.Leaf("Avatar", "Action", 760),
		hierarchy.Leaf("Titanic", "Drama", 658),
	)
	res, err := treemap.Layout(root, 1340, 540)
	if err != nil {
		panic(err)
	}
	svg := sink.RenderSVG(res, sink.WithTitle("Movie Sales"))
	fmt.Println(len(svg) > 0)
	// Output: true
}
