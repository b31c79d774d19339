package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"geman/internal/tag"
)

const scanRefresh = 100 * time.Millisecond

// ScanStatus keeps one spinner line up to date while geman asks GitHub for
// the newest release of each kind. Wine kinds report the tag page being
// scanned.
type ScanStatus struct {
	w   io.Writer
	now func() time.Time

	mu      sync.Mutex
	kind    tag.Kind
	page    int
	started time.Time

	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewScanStatus starts redrawing the status line on w.
func NewScanStatus(w io.Writer) *ScanStatus {
	s := newScanStatus(w, time.Now)
	go s.loop()
	return s
}

func newScanStatus(w io.Writer, now func() time.Time) *ScanStatus {
	return &ScanStatus{
		w:       w,
		now:     now,
		started: now(),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Kind switches the line to a new lookup.
func (s *ScanStatus) Kind(kind tag.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind, s.page, s.started = kind, 0, s.now()
}

// Page records the tag page being fetched for kind. Its signature matches
// release.PageObserver.
func (s *ScanStatus) Page(kind tag.Kind, page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind != s.kind {
		s.kind, s.started = kind, s.now()
	}
	s.page = page
}

// Stop clears the line. It is safe to call more than once.
func (s *ScanStatus) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		select {
		case <-s.stopped:
		case <-time.After(time.Second):
		}
		fmt.Fprint(s.w, "\r\033[K")
	})
}

func (s *ScanStatus) loop() {
	defer close(s.stopped)
	ticker := time.NewTicker(scanRefresh)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			fmt.Fprintf(s.w, "\r\033[K%s", s.line(frame))
		}
	}
}

func (s *ScanStatus) line(frame int) string {
	s.mu.Lock()
	kind, page, started := s.kind, s.page, s.started
	s.mu.Unlock()

	what := "latest release"
	if page > 0 {
		what = fmt.Sprintf("tags page %d", page)
	}
	elapsed := s.now().Sub(started).Round(scanRefresh)
	return fmt.Sprintf("%s %s: %s (%s)", spinnerFrames[frame%len(spinnerFrames)], kind.ToolName(), what, elapsed)
}
