package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner animates a label and the elapsed time while the analysis service is working.
type Spinner struct {
	frames   []string
	label    string
	interval time.Duration
	writer   io.Writer
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewSpinner creates a spinner that writes to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		label:    label,
		interval: 80 * time.Millisecond,
		writer:   w,
		stopChan: make(chan struct{}),
	}
}

// Start begins the animation. Calling it twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	started := time.Now()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for idx := 0; ; idx++ {
			fmt.Fprintf(s.writer, "\r%s %s %s", s.frames[idx%len(s.frames)], s.label,
				mutedColor.Sprintf("%ds", int(time.Since(started).Seconds())))
			select {
			case <-s.stopChan:
				fmt.Fprint(s.writer, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and clears the line. A stopped spinner cannot be restarted.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
}
