package tui

// StatusMsg moves a row to a new status. Detail replaces the row's detail
// text when non-empty.
type StatusMsg struct {
	Key    string
	Status string
	Detail string
}

// DownloadMsg reports bytes received for a row's archive. Total is zero when
// the server did not announce a size.
type DownloadMsg struct {
	Key   string
	Done  int64
	Total int64
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}
