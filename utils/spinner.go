package utils

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// spinnerFrames are drawn in turn after the message.
var spinnerFrames = []rune("▖▘▝▗")

// Spinner is a progress indicator drawn on a single terminal line.
// On a writer that is not interactive only the final message is printed.
type Spinner struct {
	mu          sync.Mutex
	w           io.Writer
	delay       time.Duration
	message     string
	interactive bool

	lastOutput string
	stop       chan struct{}
	done       chan struct{}
}

// NewSpinner creates a progress indicator writing to w.
func NewSpinner(w io.Writer, msg string, d time.Duration, interactive bool) *Spinner {
	return &Spinner{
		w:           w,
		delay:       d,
		message:     msg,
		interactive: interactive,
	}
}

// Start hides the cursor and starts drawing. Calling Start on a running
// spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil || !s.interactive {
		return
	}
	s.stop, s.done = make(chan struct{}), make(chan struct{})
	s.hideCursor()

	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		s.clear()
		s.lastOutput = fmt.Sprintf("%s %s%c%s", s.message, SuccessColor, spinnerFrames[i%len(spinnerFrames)], DefaultColor)
		fmt.Fprint(s.w, s.lastOutput)
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop waits for the drawing goroutine to exit, clears the line and
// prints msg in its place.
func (s *Spinner) Stop(msg string) {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	s.RestoreCursor()
	if msg != "" {
		fmt.Fprintln(s.w, msg)
	}
}

func (s *Spinner) hideCursor() {
	if runtime.GOOS != "windows" {
		fmt.Fprint(s.w, "\033[?25l")
	}
}

// RestoreCursor makes the cursor visible again.
func (s *Spinner) RestoreCursor() {
	if s.interactive && runtime.GOOS != "windows" {
		fmt.Fprint(s.w, "\033[?25h")
	}
}

// clear erases the last drawn line. Caller must hold the lock.
func (s *Spinner) clear() {
	if s.lastOutput == "" {
		return
	}
	if runtime.GOOS == "windows" {
		n := utf8.RuneCountInString(s.lastOutput)
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", n)+"\r")
	} else {
		fmt.Fprint(s.w, "\r\033[K")
	}
	s.lastOutput = ""
}
