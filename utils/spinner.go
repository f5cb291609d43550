package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Spinner initializes the process indicator.
type Spinner struct {
	out      io.Writer
	width    int
	animated bool

	mu       sync.Mutex
	message  string
	stopChan chan struct{}
	done     chan struct{}
}

// NewSpinner instantiates a new Spinner writing to stderr. The indicator is
// only animated when stderr is a terminal.
func NewSpinner() *Spinner {
	fd := int(os.Stderr.Fd())
	s := &Spinner{out: os.Stderr, width: 80}
	if term.IsTerminal(fd) {
		s.animated = true
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			s.width = w
		}
	}
	return s
}

// Start starts the process indicator.
func (s *Spinner) Start(message string) {
	s.Update(message)
	if !s.animated {
		fmt.Fprintln(s.out, message)
		return
	}
	s.stopChan = make(chan struct{}, 1)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		for {
			for _, r := range `-\|/` {
				select {
				case <-s.stopChan:
					fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width-1))
					return
				default:
					fmt.Fprintf(s.out, "\r%s%s %c%s", s.line(), SuccessColor, r, DefaultColor)
					time.Sleep(time.Millisecond * 100)
				}
			}
		}
	}()
}

// Update replaces the message shown next to the indicator.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// line returns the current message padded or cut to the terminal width.
func (s *Spinner) line() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := s.width - 3
	if limit < 1 {
		return ""
	}
	if len(s.message) > limit {
		return s.message[:limit]
	}
	return s.message + strings.Repeat(" ", limit-len(s.message))
}

// Stop stops the process indicator.
func (s *Spinner) Stop() {
	if s.stopChan == nil {
		return
	}
	s.stopChan <- struct{}{}
	<-s.done
	s.stopChan = nil
}
