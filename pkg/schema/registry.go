package schema

import (
	"time"

	"github.com/aretw0/datadesk/pkg/domain"
)

// Field is the typed view of one record attribute.
type Field interface {
	ID() domain.FieldID
	Kind() Kind
	// Compare orders two records by this field.
	Compare(a, b *domain.Record) int
	// Matcher coerces raw to the field's kind and returns a predicate
	// selecting records whose value equals it.
	Matcher(raw string) (func(*domain.Record) bool, error)
	// IsUnset reports whether the record holds the zero value for the field.
	IsUnset(r *domain.Record) bool
	Format(r *domain.Record) string
}

type typedField[T any] struct {
	id   domain.FieldID
	kind valueKind[T]
	get  func(*domain.Record) T
}

func newField[T any](id domain.FieldID, kind valueKind[T], get func(*domain.Record) T) Field {
	return &typedField[T]{id: id, kind: kind, get: get}
}

func (f *typedField[T]) ID() domain.FieldID { return f.id }
func (f *typedField[T]) Kind() Kind         { return f.kind.Kind() }

func (f *typedField[T]) Compare(a, b *domain.Record) int {
	return f.kind.Compare(f.get(a), f.get(b))
}

func (f *typedField[T]) Matcher(raw string) (func(*domain.Record) bool, error) {
	want, err := f.kind.Parse(raw)
	if err != nil {
		return nil, &TypeMismatchError{Field: f.id, Expected: f.kind.Kind(), Raw: raw}
	}
	return func(r *domain.Record) bool {
		return f.kind.Equal(f.get(r), want)
	}, nil
}

func (f *typedField[T]) IsUnset(r *domain.Record) bool {
	return f.kind.Unset(f.get(r))
}

func (f *typedField[T]) Format(r *domain.Record) string {
	return f.kind.Format(f.get(r))
}

var registry = map[domain.FieldID]Field{
	domain.FieldIdentifier:    newField(domain.FieldIdentifier, integerKind{}, func(r *domain.Record) int { return r.ID }),
	domain.FieldFullName:      newField(domain.FieldFullName, textKind{}, func(r *domain.Record) string { return r.FullName }),
	domain.FieldGlobalID:      newField(domain.FieldGlobalID, integerKind{}, func(r *domain.Record) int { return r.GlobalID }),
	domain.FieldShortName:     newField(domain.FieldShortName, textKind{}, func(r *domain.Record) string { return r.ShortName }),
	domain.FieldAdmArea:       newField(domain.FieldAdmArea, textKind{}, func(r *domain.Record) string { return r.AdmArea }),
	domain.FieldDistrict:      newField(domain.FieldDistrict, textKind{}, func(r *domain.Record) string { return r.District }),
	domain.FieldAddress:       newField(domain.FieldAddress, textKind{}, func(r *domain.Record) string { return r.Address }),
	domain.FieldOwner:         newField(domain.FieldOwner, textKind{}, func(r *domain.Record) string { return r.Owner }),
	domain.FieldTestDate:      newField(domain.FieldTestDate, dateKind{}, func(r *domain.Record) time.Time { return r.TestDate }),
	domain.FieldGeodataCenter: newField(domain.FieldGeodataCenter, textKind{}, func(r *domain.Record) string { return r.GeodataCenter }),
	domain.FieldGeoarea:       newField(domain.FieldGeoarea, textKind{}, func(r *domain.Record) string { return r.Geoarea }),
}

// Resolve looks up a field by id.
func Resolve(id domain.FieldID) (Field, error) {
	f, ok := registry[id]
	if !ok {
		return nil, &UnknownFieldError{Field: id}
	}
	return f, nil
}

// All returns every declared field in column order.
func All() []Field {
	ids := domain.Fields()
	out := make([]Field, 0, len(ids))
	for _, id := range ids {
		out = append(out, registry[id])
	}
	return out
}

// OfKind returns the declared fields of one kind in column order.
func OfKind(k Kind) []Field {
	var out []Field
	for _, f := range All() {
		if f.Kind() == k {
			out = append(out, f)
		}
	}
	return out
}
