package domain

import "time"

// Record is one gas station row of the Moscow open-data registry.
type Record struct {
	ID            int       `json:"id"`
	FullName      string    `json:"full_name"`
	GlobalID      int       `json:"global_id"`
	ShortName     string    `json:"short_name"`
	AdmArea       string    `json:"adm_area"`
	District      string    `json:"district"`
	Address       string    `json:"address"`
	Owner         string    `json:"owner"`
	TestDate      time.Time `json:"test_date"`
	GeodataCenter string    `json:"geodata_center"`
	Geoarea       string    `json:"geoarea"`
}

// IsZero reports whether every attribute holds its zero value.
func (r Record) IsZero() bool {
	return r == Record{}
}

// HasEmptyRequired reports whether any attribute that a well-formed export
// always fills is missing. Geodata columns are optional.
func (r Record) HasEmptyRequired() bool {
	return r.ID == 0 || r.FullName == "" || r.GlobalID == 0 || r.ShortName == "" ||
		r.AdmArea == "" || r.District == "" || r.Address == "" || r.Owner == "" ||
		r.TestDate.IsZero()
}

// Dataset is an ordered sequence of records. Datasets are treated as
// immutable: operations return new slices instead of reordering in place.
// A nil Dataset means no data was ever loaded.
type Dataset []Record

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d)
}

// Empty reports whether the dataset is absent or has no records.
func (d Dataset) Empty() bool {
	return len(d) == 0
}
