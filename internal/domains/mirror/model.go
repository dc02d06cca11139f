package mirror

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// State is the demo running total. JSON tags match the data/state.json layout.
type State struct {
	Total         string `json:"total"`
	LastRecipient string `json:"lastRecipient"`
}

// Snapshot pairs a state with the store version it was read at.
// Version 0 means no record has been written yet.
type Snapshot struct {
	State   State
	Version uint64
}

func Initial() State {
	return State{Total: "0", LastRecipient: ""}
}

// Store persists the single state record with optimistic concurrency.
type Store interface {
	Read(ctx context.Context) (Snapshot, error)
	// CompareAndSwap writes next only if the stored version still equals expected.
	// It returns contracts.ErrVersionConflict otherwise.
	CompareAndSwap(ctx context.Context, expected uint64, next State) (Snapshot, error)
	Close() error
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// AddDecimal adds two decimal strings exactly and keeps the larger fractional scale.
// A blank total counts as zero.
func AddDecimal(total, amount string) (string, error) {
	a, scaleA, err := parseDecimal(total, true)
	if err != nil {
		return "", fmt.Errorf("total: %w", err)
	}
	b, scaleB, err := parseDecimal(amount, false)
	if err != nil {
		return "", fmt.Errorf("amount: %w", err)
	}
	scale := max(scaleA, scaleB)
	return new(big.Rat).Add(a, b).FloatString(scale), nil
}

func parseDecimal(raw string, blankIsZero bool) (*big.Rat, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" && blankIsZero {
		return new(big.Rat), 0, nil
	}
	if !decimalPattern.MatchString(raw) {
		return nil, 0, fmt.Errorf("%q is not a decimal number", raw)
	}
	r, ok := new(big.Rat).SetString(raw)
	if !ok {
		return nil, 0, fmt.Errorf("%q is not a decimal number", raw)
	}
	scale := 0
	if dot := strings.IndexByte(raw, '.'); dot >= 0 {
		scale = len(raw) - dot - 1
	}
	return r, scale, nil
}
