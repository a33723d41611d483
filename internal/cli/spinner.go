package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	spinnerInterval = 80 * time.Millisecond
	// spinnerShowElapsed is when the spinner starts appending "(3s)".
	spinnerShowElapsed = 2 * time.Second
)

// Spinner animates a single stderr line while a load or render runs. The
// animation ends on Stop or when the parent context is cancelled, whichever
// comes first.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{} // closed when the animation exits; nil until Start
	once    sync.Once
	width   int // printed width of the last frame, for clearing
}

func newSpinner(ctx context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{w: os.Stderr, message: message, ctx: ctx, cancel: cancel}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.done = make(chan struct{})
	go s.run(time.Now())
}

func (s *Spinner) run(start time.Time) {
	defer close(s.done)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
			return
		case now := <-ticker.C:
			line := styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]) + " " + StyleDim.Render(s.message)
			if elapsed := now.Sub(start); elapsed >= spinnerShowElapsed {
				line += StyleDim.Render(fmt.Sprintf(" (%ds)", int(elapsed.Seconds())))
			}
			s.width = max(s.width, lipgloss.Width(line))
			fmt.Fprintf(s.w, "\r%s", line)
		}
	}
}

// Stop ends the animation and clears its line. Calling it again, or without
// Start, is harmless.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		if s.done != nil {
			<-s.done
		}
	})
}

// StopWithSuccess stops the spinner and prints a success line to stdout.
func (s *Spinner) StopWithSuccess(format string, args ...any) {
	s.Stop()
	printSuccess(format, args...)
}

// StopWithError stops the spinner and prints an error line to stdout.
func (s *Spinner) StopWithError(format string, args ...any) {
	s.Stop()
	printError(format, args...)
}
