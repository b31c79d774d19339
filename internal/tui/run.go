package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunWithWork starts a bubbletea program for model, runs work in a goroutine
// and blocks until both have finished. Quitting the program cancels the
// context handed to work. The error returned by work is the error returned
// here; the TUI only displays it.
func RunWithWork(ctx context.Context, out io.Writer, model ProgressModel, work func(ctx context.Context, send func(tea.Msg)) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))

	var workErr error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		// Let the event loop render the first frame.
		time.Sleep(50 * time.Millisecond)

		workErr = work(ctx, p.Send)
		if workErr != nil {
			p.Send(ErrorMsg{Err: workErr})
			return
		}
		p.Send(WorkDoneMsg{})
	}()

	_, runErr := p.Run()
	cancel()
	<-finished
	if workErr != nil {
		return workErr
	}
	return runErr
}
