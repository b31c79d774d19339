package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const reportInterval = 100 * time.Millisecond

// DownloadReporter returns a progress callback that forwards byte counts for
// key as DownloadMsg, at most once per reportInterval plus the final count.
func DownloadReporter(send func(tea.Msg), key string) func(done, total int64) {
	var (
		mu   sync.Mutex
		last time.Time
	)
	return func(done, total int64) {
		mu.Lock()
		now := time.Now()
		final := total > 0 && done >= total
		if !final && now.Sub(last) < reportInterval {
			mu.Unlock()
			return
		}
		last = now
		mu.Unlock()
		send(DownloadMsg{Key: key, Done: done, Total: total})
	}
}
