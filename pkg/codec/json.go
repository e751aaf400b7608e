package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/datadesk/pkg/domain"
)

const jsonDateLayout = "2006-01-02T15:04:05"

var jsonParseLayouts = []string{jsonDateLayout, time.RFC3339, "2006-01-02", csvDateLayout, csvParseLayout}

// jsonRecord is the wire shape of a record in JSON files.
type jsonRecord struct {
	ID            int      `json:"ID"`
	FullName      string   `json:"FullName"`
	GlobalID      int      `json:"global_id"`
	ShortName     string   `json:"ShortName"`
	AdmArea       string   `json:"AdmArea"`
	District      string   `json:"District"`
	Address       string   `json:"Address"`
	Owner         string   `json:"Owner"`
	TestDate      jsonDate `json:"TestDate"`
	GeodataCenter string   `json:"geodata_center"`
	Geoarea       string   `json:"geoarea"`
}

type jsonDate time.Time

func (d jsonDate) MarshalJSON() ([]byte, error) {
	t := time.Time(d)
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(t.Format(jsonDateLayout))
}

func (d *jsonDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = jsonDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("TestDate must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = jsonDate{}
		return nil
	}
	for _, layout := range jsonParseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = jsonDate(t)
			return nil
		}
	}
	return fmt.Errorf("unrecognized TestDate %q", s)
}

// DecodeJSON parses a JSON array of records. It does not validate content.
func DecodeJSON(data []byte) (domain.Dataset, error) {
	var rows []jsonRecord
	if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &rows); err != nil {
		return nil, &ParseError{Format: JSON, Err: err}
	}

	ds := make(domain.Dataset, 0, len(rows))
	for _, r := range rows {
		ds = append(ds, domain.Record{
			ID:            r.ID,
			FullName:      r.FullName,
			GlobalID:      r.GlobalID,
			ShortName:     r.ShortName,
			AdmArea:       r.AdmArea,
			District:      r.District,
			Address:       r.Address,
			Owner:         r.Owner,
			TestDate:      time.Time(r.TestDate),
			GeodataCenter: r.GeodataCenter,
			Geoarea:       r.Geoarea,
		})
	}
	return ds, nil
}

// EncodeJSON writes an indented array without HTML escaping, so addresses
// with quotes and ampersands stay readable.
func EncodeJSON(ds domain.Dataset) ([]byte, error) {
	rows := make([]jsonRecord, 0, len(ds))
	for _, r := range ds {
		rows = append(rows, jsonRecord{
			ID:            r.ID,
			FullName:      r.FullName,
			GlobalID:      r.GlobalID,
			ShortName:     r.ShortName,
			AdmArea:       r.AdmArea,
			District:      r.District,
			Address:       r.Address,
			Owner:         r.Owner,
			TestDate:      jsonDate(r.TestDate),
			GeodataCenter: r.GeodataCenter,
			Geoarea:       r.Geoarea,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return buf.Bytes(), nil
}
