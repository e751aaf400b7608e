package schema

import (
	"cmp"
	"strconv"
	"strings"
	"time"
)

// Kind is the value type of a field.
type Kind string

const (
	Integer Kind = "integer"
	Text    Kind = "text"
	Date    Kind = "date"
)

// DateLayout is the day.month.year format users type dates in.
const DateLayout = "2.1.2006"

// DisplayDateLayout is the zero-padded form used when printing dates.
const DisplayDateLayout = "02.01.2006"

// Hint describes the accepted input for the kind.
func (k Kind) Hint() string {
	switch k {
	case Integer:
		return "a whole number, e.g. 42"
	case Date:
		return "a date as day.month.year, e.g. 15.06.2021"
	default:
		return "any text"
	}
}

// valueKind is the typed behaviour shared by every field of one kind.
type valueKind[T any] interface {
	Kind() Kind
	Parse(raw string) (T, error)
	Compare(a, b T) int
	Equal(a, b T) bool
	Unset(v T) bool
	Format(v T) string
}

type integerKind struct{}

func (integerKind) Kind() Kind { return Integer }

func (integerKind) Parse(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

func (integerKind) Compare(a, b int) int { return cmp.Compare(a, b) }
func (integerKind) Equal(a, b int) bool  { return a == b }
func (integerKind) Unset(v int) bool     { return v == 0 }
func (integerKind) Format(v int) string  { return strconv.Itoa(v) }

type textKind struct{}

func (textKind) Kind() Kind { return Text }

func (textKind) Parse(raw string) (string, error) {
	return strings.TrimSpace(raw), nil
}

// Compare orders by bytes, which for UTF-8 is code point order.
func (textKind) Compare(a, b string) int { return strings.Compare(a, b) }
func (textKind) Equal(a, b string) bool  { return a == b }
func (textKind) Unset(v string) bool     { return v == "" }
func (textKind) Format(v string) string  { return v }

type dateKind struct{}

func (dateKind) Kind() Kind { return Date }

func (dateKind) Parse(raw string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(raw))
}

func (dateKind) Compare(a, b time.Time) int { return a.Compare(b) }

// Equal compares calendar days so that timestamps carrying a time of day
// still match a typed date.
func (dateKind) Equal(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (dateKind) Unset(v time.Time) bool { return v.IsZero() }

func (dateKind) Format(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format(DisplayDateLayout)
}
