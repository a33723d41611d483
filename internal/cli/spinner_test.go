package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerAnimatesAndClears(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), "Rendering videogames...")
	s.w = &out
	s.Start()
	time.Sleep(5 * spinnerInterval)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Rendering videogames...") {
		t.Errorf("spinner output = %q", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner should end by clearing its line, got %q", got)
	}
	if strings.Contains(got, "(") {
		t.Errorf("elapsed time shown too early: %q", got)
	}
}

func TestSpinnerStopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "Loading dataset...")
	s.w = &syncBuffer{}
	s.Start()
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context was cancelled")
	}
	s.Stop()
}

func TestSpinnerStop(t *testing.T) {
	t.Run("repeated", func(t *testing.T) {
		s := newSpinner(context.Background(), "Rendering...")
		s.w = &syncBuffer{}
		s.Start()
		s.Stop()
		s.Stop()
	})
	t.Run("never started", func(t *testing.T) {
		s := newSpinner(context.Background(), "Rendering...")
		s.Stop()
		if s.ctx.Err() == nil {
			t.Error("Stop should cancel the spinner context")
		}
	})
}

func TestSpinnerStopWithStatus(t *testing.T) {
	var out bytes.Buffer
	old := stdout
	stdout = &out
	defer func() { stdout = old }()

	s := newSpinner(context.Background(), "Loading dataset...")
	s.w = &syncBuffer{}
	s.Start()
	s.StopWithSuccess("Loaded %s (%d leaves)", "Video Game Sales", 119)

	s = newSpinner(context.Background(), "Rendering...")
	s.w = &syncBuffer{}
	s.Start()
	s.StopWithError("Render failed")

	got := out.String()
	for _, want := range []string{"Loaded Video Game Sales (119 leaves)", "Render failed"} {
		if !strings.Contains(got, want) {
			t.Errorf("status output %q missing %q", got, want)
		}
	}
}
