package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Spinner animates a single status line from a background goroutine.
// A disabled spinner prints nothing.
type Spinner struct {
	w        io.Writer
	enabled  bool
	interval time.Duration
	color    *color.Color

	mu      sync.Mutex
	message string
	width   int
	active  bool
}

// NewSpinner creates a spinner writing to w. It only animates when enabled,
// which callers set when w is a terminal.
func NewSpinner(w io.Writer, enabled bool) *Spinner {
	return &Spinner{
		w:        w,
		enabled:  enabled,
		interval: spinnerInterval,
		color:    color.New(color.FgBlue),
	}
}

// Start shows message until the returned stop function is called. stop
// blocks until the goroutine has exited and the line is cleared; calling it
// more than once is safe.
func (s *Spinner) Start(message string) (stop func()) {
	if !s.enabled {
		return func() {}
	}

	s.mu.Lock()
	s.message = message
	s.width = len(message)
	s.active = true
	s.mu.Unlock()

	quit := make(chan struct{})
	done := make(chan struct{})
	go s.run(quit, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
			s.mu.Lock()
			width := s.width
			s.active = false
			s.mu.Unlock()
			fmt.Fprint(s.w, "\r"+strings.Repeat(" ", width+10)+"\r")
		})
	}
}

// SetMessage replaces the text of a running spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.message = message
	if len(message) > s.width {
		s.width = len(message)
	}
}

func (s *Spinner) run(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		msg := s.message
		s.mu.Unlock()
		fmt.Fprint(s.w, "\r"+s.color.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], msg)+"   ")

		select {
		case <-quit:
			return
		case <-ticker.C:
		}
	}
}
