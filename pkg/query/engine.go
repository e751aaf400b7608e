// Package query sorts and filters datasets by fields of the schema registry.
//
// Operations never modify their input; every successful call returns a new
// Dataset.
package query

import (
	"slices"
	"strings"

	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/schema"
)

// Sort orders a copy of ds by field. The ascending order is stable; with
// reverse set the result is the exact reverse of the ascending order.
func Sort(ds domain.Dataset, field domain.FieldID, reverse bool) (domain.Dataset, error) {
	if ds.Empty() {
		return nil, ErrEmptyDataset
	}
	if incomplete(ds) {
		return nil, ErrIncompleteData
	}
	f, err := schema.Resolve(field)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(ds)
	slices.SortStableFunc(out, func(a, b domain.Record) int {
		return f.Compare(&a, &b)
	})
	if reverse {
		slices.Reverse(out)
	}
	return out, nil
}

// Filter keeps the records whose field1 equals the coerced raw input.
//
// When field2 names a different field, raw must hold two non-empty lines:
// the first is matched against field1, the second against field2, and both
// must hold. field2 set to None, left empty, or equal to field1 selects the
// single-field mode.
func Filter(ds domain.Dataset, field1 domain.FieldID, raw string, field2 domain.FieldID) (domain.Dataset, error) {
	if ds.Empty() {
		return nil, ErrEmptyDataset
	}
	f1, err := schema.Resolve(field1)
	if err != nil {
		return nil, err
	}

	var match func(*domain.Record) bool
	if !compound(field1, field2) {
		match, err = f1.Matcher(raw)
		if err != nil {
			return nil, err
		}
	} else {
		f2, err := schema.Resolve(field2)
		if err != nil {
			return nil, err
		}
		lines, err := SplitCompound(raw)
		if err != nil {
			return nil, err
		}
		m1, err := f1.Matcher(lines[0])
		if err != nil {
			return nil, err
		}
		m2, err := f2.Matcher(lines[1])
		if err != nil {
			return nil, err
		}
		match = func(r *domain.Record) bool { return m1(r) && m2(r) }
	}

	var out domain.Dataset
	for i := range ds {
		if match(&ds[i]) {
			out = append(out, ds[i])
		}
	}
	if len(out) == 0 {
		return nil, ErrNoMatch
	}
	return out, nil
}

// SplitCompound splits two-field input into its two lines. Blank lines are
// ignored and surrounding whitespace is trimmed.
func SplitCompound(raw string) ([2]string, error) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) != 2 {
		return [2]string{}, ErrMalformedCompoundInput
	}
	return [2]string{lines[0], lines[1]}, nil
}

func compound(field1, field2 domain.FieldID) bool {
	return field2 != domain.FieldNone && field2 != "" && field2 != field1
}

func incomplete(ds domain.Dataset) bool {
	dates := schema.OfKind(schema.Date)
	for i := range ds {
		for _, f := range dates {
			if f.IsUnset(&ds[i]) {
				return true
			}
		}
	}
	return false
}
