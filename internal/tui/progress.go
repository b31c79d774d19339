package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

const (
	tickInterval = 120 * time.Millisecond
	barWidth     = 30
	nameWidth    = 28
	statusWidth  = 11
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Row statuses in the order an install moves through them.
const (
	StatusPending     = "pending"
	StatusResolving   = "resolving"
	StatusDownloading = "downloading"
	StatusVerifying   = "verifying"
	StatusExtracting  = "extracting"
	StatusInstalled   = "installed"
	StatusManaged     = "managed"
	StatusActive      = "active"
	StatusError       = "error"
)

type tickMsg time.Time

type row struct {
	key    string
	name   string
	status string
	detail string
	done   int64
	total  int64
}

func (r row) finished() bool {
	switch r.status {
	case StatusInstalled, StatusManaged, StatusActive, StatusError:
		return true
	}
	return false
}

// ProgressModel renders one line per tool being installed, with a download
// bar while the archive is transferred.
type ProgressModel struct {
	title    string
	rows     []row
	rowIndex map[string]int
	bar      progress.Model
	done     bool
	err      error
	tick     int
}

// NewProgressModel creates an empty model. Add rows before the program starts.
func NewProgressModel(title string) ProgressModel {
	return ProgressModel{
		title:    title,
		rowIndex: make(map[string]int),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
	}
}

// AddRow registers a row under key, labelled name.
func (m *ProgressModel) AddRow(key, name string) {
	m.rowIndex[key] = len(m.rows)
	m.rows = append(m.rows, row{key: key, name: name, status: StatusPending})
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m ProgressModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case StatusMsg:
		if r := m.row(msg.Key); r != nil {
			r.status = msg.Status
			if msg.Detail != "" {
				r.detail = msg.Detail
			}
		}
		return m, nil

	case DownloadMsg:
		if r := m.row(msg.Key); r != nil {
			r.status = StatusDownloading
			r.done, r.total = msg.Done, msg.Total
		}
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *ProgressModel) row(key string) *row {
	idx, ok := m.rowIndex[key]
	if !ok {
		return nil
	}
	return &m.rows[idx]
}

// View satisfies the tea.Model interface.
func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(HeaderStyle.Render(m.title))
		b.WriteByte('\n')
	}
	for _, r := range m.rows {
		status := pad(r.status, statusWidth)
		fmt.Fprintf(&b, "%s  %s  %s\n", pad(TruncateWithEllipsis(r.name, nameWidth), nameWidth), StatusStyle(r.status).Render(status), m.rowDetail(r))
	}

	if !m.done {
		finished := 0
		for _, r := range m.rows {
			if r.finished() {
				finished++
			}
		}
		fmt.Fprintf(&b, "\n%s Working %d/%d...\n", spinnerFrames[m.tick%len(spinnerFrames)], finished, len(m.rows))
	}
	return b.String()
}

func (m ProgressModel) rowDetail(r row) string {
	if r.status != StatusDownloading {
		return r.detail
	}
	if r.total <= 0 {
		return humanize.Bytes(uint64(r.done))
	}
	return fmt.Sprintf("%s %s / %s", m.bar.ViewAs(Fraction(r.done, r.total)), humanize.Bytes(uint64(r.done)), humanize.Bytes(uint64(r.total)))
}

// Done returns whether the model has finished (work done or error).
func (m ProgressModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m ProgressModel) Err() error {
	return m.err
}

// Fraction returns done/total clamped to [0, 1].
func Fraction(done, total int64) float64 {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done >= total {
		return 1
	}
	return float64(done) / float64(total)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// NonEmptyOrDash returns "-" for empty/whitespace strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis truncates a string and adds "..." if it exceeds max length.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
