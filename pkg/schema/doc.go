// Package schema is the field registry of the gas station record.
//
// Every queryable attribute of domain.Record is declared once, with its value
// kind (integer, text or date), an accessor, a comparator and a parser that
// coerces user text into a typed value. Query code goes through Resolve and
// never touches record attributes directly.
//
// Basic usage:
//
//	f, err := schema.Resolve(domain.FieldTestDate)
//	if err != nil {
//	    // *UnknownFieldError
//	}
//
//	match, err := f.Matcher("15.06.2021")
//	if err != nil {
//	    // *TypeMismatchError{Field: TestDate, Expected: date, Raw: "15.06.2021"}
//	}
//
//	for i := range records {
//	    if match(&records[i]) { ... }
//	}
//
// The registry is built at init time and never modified, so it is safe to
// share across goroutines.
package schema
