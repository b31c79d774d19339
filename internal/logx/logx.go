package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger that writes JSON lines to a timestamped file inside
// logsDir. When console is non-nil, events are also rendered to it in a
// human readable form. The returned closer should be closed when logging is
// no longer needed.
func New(logsDir, level string, console io.Writer) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	file, err := os.OpenFile(filepath.Join(logsDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = file
	if console != nil {
		out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen})
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return logger, file, nil
}
