package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const spinnerInterval = 100 * time.Millisecond

// Spinner displays a progress animation on a single line.
type Spinner struct {
	w       io.Writer
	message string
	frames  []string
	done    chan struct{}
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSpinner creates a new spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start starts the animation. Calling it twice has no effect.
func (s *Spinner) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

func (s *Spinner) run() {
	defer close(s.stopped)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

// halt stops the animation and waits for the last frame to be written, so
// the final line never interleaves with a frame.
func (s *Spinner) halt() {
	s.stopOnce.Do(func() {
		close(s.done)
		started := true
		s.startOnce.Do(func() { started = false })
		if started {
			<-s.stopped
		}
	})
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.halt()
	fmt.Fprint(s.w, "\r\033[K")
}

// Success stops the spinner with a success line.
func (s *Spinner) Success(message string) {
	s.halt()
	fmt.Fprint(s.w, "\r\033[K")
	Success(s.w, "%s", message)
}

// Fail stops the spinner with a failure line.
func (s *Spinner) Fail(message string) {
	s.halt()
	fmt.Fprint(s.w, "\r\033[K")
	Failure(s.w, "%s", message)
}
