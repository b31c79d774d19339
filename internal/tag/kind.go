package tag

import (
	"fmt"
	"strings"
)

// Kind identifies a compatibility tool family. The set is closed; values are
// ordered by declaration.
type Kind int

const (
	// Proton is Proton GE, used by Steam.
	Proton Kind = iota
	// Wine is the standard Wine GE build, used by Lutris.
	Wine
	// LoL is the League of Legends variant of Wine GE.
	LoL
)

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{Proton, Wine, LoL}
}

// String returns the persisted name of the kind.
func (k Kind) String() string {
	switch k {
	case Proton:
		return "Proton"
	case Wine:
		return "Wine"
	case LoL:
		return "LoL_Wine"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ToolName is the human facing name of the compatibility tool.
func (k Kind) ToolName() string {
	switch k {
	case Proton:
		return "Proton GE"
	case Wine:
		return "Wine GE"
	case LoL:
		return "Wine GE (LoL)"
	default:
		return k.String()
	}
}

// AppName is the host application that consumes the tool.
func (k Kind) AppName() string {
	if k == Proton {
		return "Steam"
	}
	return "Lutris"
}

// IsWine reports whether k belongs to the Wine family.
func (k Kind) IsWine() bool {
	return k == Wine || k == LoL
}

// IsLoL reports whether k is the LoL sub-variant.
func (k Kind) IsLoL() bool {
	return k == LoL
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= Proton && k <= LoL
}

// ParseKind accepts the persisted names plus the short command line aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "proton", "proton-ge", "p":
		return Proton, nil
	case "wine", "wine-ge", "w":
		return Wine, nil
	case "lol_wine", "lol", "wine-lol", "l":
		return LoL, nil
	default:
		return 0, fmt.Errorf("unknown tool kind %q (want proton, wine or lol)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid tool kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
