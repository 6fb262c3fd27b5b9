package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 90 * time.Millisecond

var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

// Spinner is a terminal progress indicator for the long pipeline stages.
// It stops on Stop or when the parent context is cancelled, whichever
// comes first, and always clears its line before handing the terminal back.
type Spinner struct {
	message string
	ctx     context.Context
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// newSpinnerWithContext creates a spinner bound to ctx.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return &Spinner{
		message: message,
		ctx:     ctx,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation on stderr.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		defer s.clearLine()

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				glyph := spinnerFrames[frame%len(spinnerFrames)]
				fmt.Fprintf(os.Stderr, "\r%s %s",
					styleIconSpinner.Render(glyph), StyleDim.Render(s.message))
			}
		}
	}()
}

// Stop halts the animation and waits for the line to be cleared.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.stopped
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

func (s *Spinner) clearLine() {
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
