package tag

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyTag is returned when a semantic version is requested for "".
	ErrEmptyTag = errors.New("empty tag")
	// ErrUnparsableTag is returned for tags containing "rc" without an
	// adjacent release candidate number.
	ErrUnparsableTag = errors.New("unparsable tag")
)

const (
	rcMarker       = "rc"
	minComponents  = 3
	componentSep   = "."
	paddingVersion = "0"
)

// Markers appended to the derived version when present in the raw tag.
var markers = []string{"LoL", "MF"}

var digitRuns = regexp.MustCompile(`[0-9]+`)

// DeriveSemver builds a "MAJOR.MINOR.PATCH[-SUFFIX]" string from an upstream
// tag. Every maximal run of digits becomes one component, in order. Fewer than
// three components are padded with zeros; more than three are kept as-is.
func DeriveSemver(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptyTag
	}

	spans := digitRuns.FindAllStringIndex(raw, -1)

	if strings.Contains(raw, rcMarker) {
		rcIdx := -1
		for i, span := range spans {
			if span[0] >= len(rcMarker) && raw[span[0]-len(rcMarker):span[0]] == rcMarker {
				rcIdx = i
				break
			}
		}
		if rcIdx < 0 {
			return "", fmt.Errorf("%w: %q has no release candidate number after %q", ErrUnparsableTag, raw, rcMarker)
		}

		components := make([]string, 0, len(spans))
		for i, span := range spans {
			if i == rcIdx {
				continue
			}
			components = append(components, raw[span[0]:span[1]])
		}
		rc := raw[spans[rcIdx][0]:spans[rcIdx][1]]
		return joinComponents(components) + "-" + rcMarker + rc, nil
	}

	components := make([]string, 0, len(spans))
	for _, span := range spans {
		components = append(components, raw[span[0]:span[1]])
	}

	var b strings.Builder
	b.WriteString(joinComponents(components))
	for _, marker := range markers {
		if strings.Contains(raw, marker) {
			b.WriteByte('-')
			b.WriteString(marker)
		}
	}
	return b.String(), nil
}

func joinComponents(components []string) string {
	for len(components) < minComponents {
		components = append(components, paddingVersion)
	}
	return strings.Join(components, componentSep)
}

// CompareSemver orders tags by their derived semantic version using plain
// string comparison, so "10.0.0" sorts before "9.0.0". Tags without a
// semantic version sort before those with one and fall back to the raw value
// among themselves.
func CompareSemver(a, b Tag) int {
	as, aok := a.Semver()
	bs, bok := b.Semver()
	switch {
	case aok && bok:
		return strings.Compare(as, bs)
	case aok:
		return 1
	case bok:
		return -1
	default:
		return strings.Compare(a.value, b.value)
	}
}
