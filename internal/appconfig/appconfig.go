// Package appconfig reads and rewrites the single attribute in Steam's and
// Lutris' configuration files that names the active compatibility tool.
// Only that attribute is located; every other byte of the file is kept.
package appconfig

import (
	"errors"
	"fmt"
	"strings"

	"geman/internal/tag"
)

// ErrAttributeNotFound is wrapped by AttributeError.
var ErrAttributeNotFound = errors.New("active version attribute not found")

// AttributeError reports a config file whose active version attribute could
// not be located.
type AttributeError struct {
	Path   string
	Kind   tag.Kind
	Reason string
}

func (e *AttributeError) Error() string {
	where := e.Path
	if where == "" {
		where = e.Kind.AppName() + " config"
	}
	return fmt.Sprintf("%s: %s: %s", where, ErrAttributeNotFound, e.Reason)
}

func (e *AttributeError) Unwrap() error { return ErrAttributeNotFound }

const (
	steamGroupMarker   = "CompatToolMapping"
	steamDefaultMarker = `"0"`
	steamValueOffset   = 2

	lutrisKeyword   = "version"
	lutrisSeparator = ": "
)

// Config is a host application's config file held as lines, plus the
// location of the active version value.
type Config struct {
	Kind tag.Kind
	Path string

	lines []string
	line  int
	start int
	end   int
}

// Parse locates the active version attribute in data.
func Parse(data []byte, kind tag.Kind) (*Config, error) {
	c := &Config{Kind: kind, lines: strings.Split(string(data), "\n")}
	var err error
	if kind.IsWine() {
		err = c.locateLutris()
	} else {
		err = c.locateSteam()
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) locateSteam() error {
	group := indexContaining(c.lines, 0, steamGroupMarker)
	if group < 0 {
		return &AttributeError{Kind: c.Kind, Reason: "no " + steamGroupMarker + " section"}
	}
	def := indexContaining(c.lines, group, steamDefaultMarker)
	if def < 0 {
		return &AttributeError{Kind: c.Kind, Reason: "no default tool mapping"}
	}
	idx := def + steamValueOffset
	if idx >= len(c.lines) {
		return &AttributeError{Kind: c.Kind, Reason: "default tool mapping is truncated"}
	}

	line := c.lines[idx]
	end := strings.LastIndex(line, `"`)
	if end <= 0 {
		return &AttributeError{Kind: c.Kind, Reason: fmt.Sprintf("line %d has no quoted value", idx+1)}
	}
	start := strings.LastIndex(line[:end], `"`)
	if start < 0 {
		return &AttributeError{Kind: c.Kind, Reason: fmt.Sprintf("line %d has no quoted value", idx+1)}
	}
	c.line, c.start, c.end = idx, start+1, end
	return nil
}

func (c *Config) locateLutris() error {
	idx := indexContaining(c.lines, 0, lutrisKeyword)
	if idx < 0 {
		return &AttributeError{Kind: c.Kind, Reason: "no " + lutrisKeyword + " key"}
	}
	line := c.lines[idx]
	sep := strings.Index(line, lutrisSeparator)
	if sep < 0 {
		return &AttributeError{Kind: c.Kind, Reason: fmt.Sprintf("line %d has no value", idx+1)}
	}
	end := len(line)
	if strings.HasSuffix(line, "\r") {
		end--
	}
	c.line, c.start, c.end = idx, sep+len(lutrisSeparator), end
	return nil
}

func indexContaining(lines []string, from int, substr string) int {
	for i := from; i < len(lines); i++ {
		if strings.Contains(lines[i], substr) {
			return i
		}
	}
	return -1
}

// ActiveVersion returns the directory name the host application uses.
func (c *Config) ActiveVersion() string {
	return c.lines[c.line][c.start:c.end]
}

// IsActive reports whether directoryName is exactly the active value.
func (c *Config) IsActive(directoryName string) bool {
	return c.ActiveVersion() == directoryName
}

// SetActiveVersion replaces the active value in place.
func (c *Config) SetActiveVersion(directoryName string) {
	line := c.lines[c.line]
	c.lines[c.line] = line[:c.start] + directoryName + line[c.end:]
	c.end = c.start + len(directoryName)
}

// Line returns the 1-based line number holding the active value.
func (c *Config) Line() int { return c.line + 1 }

// Bytes renders the file.
func (c *Config) Bytes() []byte {
	return []byte(strings.Join(c.lines, "\n"))
}

// InitialLutrisConfig is written when Lutris has no Wine runner config yet.
func InitialLutrisConfig(directoryName string) []byte {
	return []byte("wine:\n  version: " + directoryName + "\n")
}
