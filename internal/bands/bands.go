// Package bands implements banded lookup tables: an ordered partition of a
// continuous metric into ranges, each carrying feedback text and a score
// deduction.
package bands

import (
	"errors"
	"fmt"
	"math"
)

// Band maps the half-open range [Min, Max) to a message and deduction.
type Band struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Deduction float64 `json:"deduction"`
	Message   string  `json:"message"`
}

// Contains reports whether v falls in [Min, Max).
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// Table is an ordered list of contiguous bands plus two catch-alls: Below
// for values under the first band and Above for values at or over the last.
// Together they cover the whole real line, so Lookup is total. NaN selects
// Above.
type Table struct {
	Name  string `json:"name"`
	Below Band   `json:"below"`
	Bands []Band `json:"bands"`
	Above Band   `json:"above"`
}

// Lookup returns the band for v, evaluated first-match.
func (t *Table) Lookup(v float64) Band {
	if len(t.Bands) == 0 || v < t.Bands[0].Min {
		return t.below()
	}
	for _, b := range t.Bands {
		if b.Contains(v) {
			return b
		}
	}
	return t.above()
}

// below returns the Below catch-all with its range filled in.
func (t *Table) below() Band {
	b := t.Below
	b.Min = math.Inf(-1)
	if len(t.Bands) > 0 {
		b.Max = t.Bands[0].Min
	} else {
		b.Max = math.Inf(1)
	}
	return b
}

// above returns the Above catch-all with its range filled in.
func (t *Table) above() Band {
	b := t.Above
	b.Min = t.Bands[len(t.Bands)-1].Max
	b.Max = math.Inf(1)
	return b
}

// All returns Below, the explicit bands, and Above in domain order, with the
// catch-all ranges filled in.
func (t *Table) All() []Band {
	out := []Band{t.below()}
	out = append(out, t.Bands...)
	if len(t.Bands) > 0 {
		out = append(out, t.above())
	}
	return out
}

// HasMessage reports whether any band of t, catch-alls included, uses msg.
func (t *Table) HasMessage(msg string) bool {
	if t.Below.Message == msg || t.Above.Message == msg {
		return true
	}
	for _, b := range t.Bands {
		if b.Message == msg {
			return true
		}
	}
	return false
}

// Validate checks that the explicit bands are non-empty, well formed and
// contiguous, and that every deduction lies in [0, 1].
func (t *Table) Validate() error {
	if len(t.Bands) == 0 {
		return fmt.Errorf("table %q: no bands", t.Name)
	}

	var errs []error
	for i, b := range t.Bands {
		if !(b.Min < b.Max) {
			errs = append(errs, fmt.Errorf("band %d: min %.2f not below max %.2f", i, b.Min, b.Max))
		}
		if i > 0 && t.Bands[i-1].Max != b.Min {
			errs = append(errs, fmt.Errorf("band %d: gap or overlap between %.2f and %.2f", i, t.Bands[i-1].Max, b.Min))
		}
		if b.Message == "" {
			errs = append(errs, fmt.Errorf("band %d: empty message", i))
		}
	}
	for i, b := range t.All() {
		if b.Deduction < 0 || b.Deduction > 1 {
			errs = append(errs, fmt.Errorf("band %d: deduction %.2f outside [0,1]", i, b.Deduction))
		}
	}
	if t.Below.Message == "" || t.Above.Message == "" {
		errs = append(errs, errors.New("catch-all bands need messages"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("table %q: %w", t.Name, err)
	}
	return nil
}
