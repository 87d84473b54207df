// Package wordlist manages the two user-editable ingredient lists and their
// persistence.
package wordlist

import (
	"fmt"
	"strings"
)

// Category selects one of the two lists.
type Category int

const (
	Suspicious Category = iota
	Prohibited
)

// Storage keys. Each holds a JSON array of phrases.
const (
	SuspiciousKey = "suspiciousIngredients"
	ProhibitedKey = "prohibitedIngredients"
)

// Categories returns both categories in display order.
func Categories() []Category {
	return []Category{Suspicious, Prohibited}
}

func (c Category) String() string {
	if c == Prohibited {
		return "prohibited"
	}
	return "suspicious"
}

// StorageKey returns the persistence key for the category.
func (c Category) StorageKey() string {
	if c == Prohibited {
		return ProhibitedKey
	}
	return SuspiciousKey
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory accepts "suspicious" or "prohibited" in any case.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "suspicious":
		return Suspicious, nil
	case "prohibited":
		return Prohibited, nil
	default:
		return 0, fmt.Errorf("unknown ingredient list %q (want suspicious or prohibited)", s)
	}
}
