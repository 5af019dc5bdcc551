// Package numerator provides domain contracts for document code allocation.
// Implementations live in the infrastructure layer.
package numerator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the document kind a sequence belongs to.
type Kind string

const (
	KindQuote   Kind = "quote"
	KindInvoice Kind = "invoice"
)

// Config holds the code format of one kind.
type Config struct {
	// Prefix added to all codes (BG for quotes, VF for invoices)
	Prefix string

	// PadWidth is the minimum sequence width
	PadWidth int
}

var configs = map[Kind]Config{
	KindQuote:   {Prefix: "BG", PadWidth: 4},
	KindInvoice: {Prefix: "VF", PadWidth: 4},
}

// ConfigFor returns the code format for kind.
func ConfigFor(kind Kind) (Config, bool) {
	cfg, ok := configs[kind]
	return cfg, ok
}

// Valid reports whether kind has a code format.
func (k Kind) Valid() bool {
	_, ok := configs[k]
	return ok
}

// FormatCode builds {prefix}{year}-{seq}, e.g. BG2025-0007.
// Sequences wider than the pad width print in full.
func FormatCode(kind Kind, year int, seq int64) string {
	cfg, ok := ConfigFor(kind)
	if !ok {
		cfg = Config{Prefix: strings.ToUpper(string(kind)), PadWidth: 4}
	}
	return fmt.Sprintf("%s%d-%0*d", cfg.Prefix, year, cfg.PadWidth, seq)
}

var codePattern = regexp.MustCompile(`^([A-Z]+)(\d{4})-(\d+)$`)

// ParseCode splits a formatted code back into its parts.
func ParseCode(code string) (Kind, int, int64, error) {
	m := codePattern.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return "", 0, 0, fmt.Errorf("malformed document code %q", code)
	}

	var kind Kind
	for k, cfg := range configs {
		if cfg.Prefix == m[1] {
			kind = k
			break
		}
	}
	if kind == "" {
		return "", 0, 0, fmt.Errorf("unknown code prefix %q", m[1])
	}

	year, _ := strconv.Atoi(m[2])
	seq, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("parse sequence: %w", err)
	}
	return kind, year, seq, nil
}

var leadingLetters = regexp.MustCompile(`^[A-Za-z]+`)

// VariableSymbol is the bank payment reference derived from an invoice code:
// VF2025-0007 becomes 20250007.
func VariableSymbol(code string) string {
	return strings.ReplaceAll(leadingLetters.ReplaceAllString(code, ""), "-", "")
}
