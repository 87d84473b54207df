package image

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is a pre-recognition processing mode. Modes cycle in declaration
// order so a rescan can try the next one.
type Mode int

const (
	ModeMildEnhancement Mode = iota
	ModeSharpen
	ModeAdaptiveThreshold
	ModeHighResOriginal

	modeCount = 4
)

func (m Mode) String() string {
	switch m {
	case ModeMildEnhancement:
		return "Mild Enhancement"
	case ModeSharpen:
		return "Sharpen Filter"
	case ModeAdaptiveThreshold:
		return "Adaptive Threshold"
	case ModeHighResOriginal:
		return "High Resolution Original"
	default:
		return "Unknown"
	}
}

// Slug is the short machine name used by the CLI and API.
func (m Mode) Slug() string {
	switch m {
	case ModeMildEnhancement:
		return "mild"
	case ModeSharpen:
		return "sharpen"
	case ModeAdaptiveThreshold:
		return "threshold"
	case ModeHighResOriginal:
		return "highres"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode by slug.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.Slug()), nil
}

// Next returns the mode after m, wrapping to the first.
func (m Mode) Next() Mode {
	return Mode((int(m) + 1) % modeCount)
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m >= 0 && m < modeCount
}

// Modes returns every mode in cycle order.
func Modes() []Mode {
	return []Mode{ModeMildEnhancement, ModeSharpen, ModeAdaptiveThreshold, ModeHighResOriginal}
}

// ParseMode accepts a slug, a display name or an index 0-3.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if m := Mode(n); m.Valid() {
			return m, nil
		}
		return 0, fmt.Errorf("processing mode %d out of range 0-%d", n, modeCount-1)
	}
	for _, m := range Modes() {
		if strings.EqualFold(s, m.Slug()) || strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown processing mode %q", s)
}
