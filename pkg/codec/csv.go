package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/datadesk/pkg/domain"
)

const (
	csvDelimiter   = ';'
	csvDateLayout  = "02.01.2006"
	csvParseLayout = "2.1.2006"
)

// csvColumns are the keys of the first header line, in column order.
var csvColumns = []string{
	"ID", "FullName", "global_id", "ShortName", "AdmArea", "District",
	"Address", "Owner", "TestDate", "geodata_center", "geoarea",
}

// csvCaptions are the human-readable captions of the second header line.
var csvCaptions = []string{
	"Код", "Полное официальное наименование", "global_id", "Сокращенное наименование",
	"Административный округ", "Район", "Адрес", "Наименование компании",
	"Дата проверки", "geodata_center", "geoarea",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV parses a registry CSV export. It does not validate content.
func DecodeCSV(data []byte) (domain.Dataset, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.Comma = csvDelimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: CSV, Err: err}
	}
	if len(rows) < 2 {
		return nil, ErrHeaderMismatch
	}
	if !sameRow(trimRow(rows[0]), csvColumns) || !sameRow(trimRow(rows[1]), csvCaptions) {
		return nil, ErrHeaderMismatch
	}

	ds := make(domain.Dataset, 0, len(rows)-2)
	for i, row := range rows[2:] {
		rec, err := parseCSVRow(trimRow(row))
		if err != nil {
			err.Line = i + 3
			return nil, err
		}
		ds = append(ds, rec)
	}
	return ds, nil
}

// EncodeCSV writes both header lines and one fully quoted row per record.
func EncodeCSV(ds domain.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader(&buf, csvColumns)
	writeHeader(&buf, csvCaptions)

	for _, r := range ds {
		writeRow(&buf, []string{
			strconv.Itoa(r.ID), r.FullName, strconv.Itoa(r.GlobalID), r.ShortName,
			r.AdmArea, r.District, r.Address, r.Owner, formatCSVDate(r.TestDate),
			r.GeodataCenter, r.Geoarea,
		})
	}
	return buf.Bytes(), nil
}

func parseCSVRow(row []string) (domain.Record, *ParseError) {
	if len(row) != len(csvColumns) {
		return domain.Record{}, &ParseError{
			Format: CSV,
			Err:    fmt.Errorf("expected %d columns, got %d", len(csvColumns), len(row)),
		}
	}

	var (
		rec domain.Record
		err error
	)
	if rec.ID, err = parseInt(row[0]); err != nil {
		return rec, &ParseError{Format: CSV, Column: csvColumns[0], Err: err}
	}
	if rec.GlobalID, err = parseInt(row[2]); err != nil {
		return rec, &ParseError{Format: CSV, Column: csvColumns[2], Err: err}
	}
	if rec.TestDate, err = parseCSVDate(row[8]); err != nil {
		return rec, &ParseError{Format: CSV, Column: csvColumns[8], Err: err}
	}
	rec.FullName = row[1]
	rec.ShortName = row[3]
	rec.AdmArea = row[4]
	rec.District = row[5]
	rec.Address = row[6]
	rec.Owner = row[7]
	rec.GeodataCenter = row[9]
	rec.Geoarea = row[10]
	return rec, nil
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(csvParseLayout, s)
}

func formatCSVDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(csvDateLayout)
}

// trimRow drops the empty cell produced by a trailing delimiter.
func trimRow(row []string) []string {
	if len(row) == len(csvColumns)+1 && row[len(row)-1] == "" {
		return row[:len(row)-1]
	}
	return row
}

func sameRow(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func writeHeader(buf *bytes.Buffer, cells []string) {
	for _, c := range cells {
		buf.WriteString(quote(c))
		buf.WriteByte(csvDelimiter)
	}
	buf.WriteByte('\n')
}

func writeRow(buf *bytes.Buffer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			buf.WriteByte(csvDelimiter)
		}
		buf.WriteString(quote(c))
	}
	buf.WriteByte('\n')
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
