package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by ParseMode for unrecognized mode names.
var ErrUnknownMode = errors.New("unknown scoring mode")

// Mode selects how achievement is computed for each row.
type Mode int

const (
	// ModePolarity derives achievement from target, realization and polarity.
	ModePolarity Mode = iota
	// ModeFlat takes realization as an already computed percentage.
	ModeFlat
)

// String returns the canonical mode name.
func (m Mode) String() string {
	if m == ModeFlat {
		return "flat"
	}
	return "polarity"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode parses a mode name. The empty string selects ModePolarity.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "polarity", "polaritas":
		return ModePolarity, nil
	case "flat", "percentage", "persentase":
		return ModeFlat, nil
	default:
		return ModePolarity, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
