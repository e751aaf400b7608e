package runtime

import (
	"fmt"

	"github.com/aretw0/datadesk/pkg/codec"
	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/navigation"
	"github.com/aretw0/datadesk/pkg/schema"
)

// Action tokens carried by menu buttons.
const (
	TokenSorting            = "Sorting"
	TokenFiltration         = "Filtration"
	TokenSortTestDateAsc    = "SortTestDateAscending"
	TokenSortTestDateDesc   = "SortTestDateDescending"
	TokenFilterDistrict     = "FilterDistrict"
	TokenFilterOwner        = "FilterOwner"
	TokenFilterAdmAreaOwner = "FilterAdmAreaAndOwner"
	TokenBack               = "Back"
	TokenSendJSON           = "SendJSONFile"
	TokenSendCSV            = "SendCSVFile"
	TokenUniversalSort      = "UniversalSort"
	TokenSortAscending      = "SortAscendingForUniversalSide"
	TokenSortDescending     = "SortDescendingForUniversalSide"
	TokenDetailedFiltering  = "MoreDetailedFiltering"
	TokenFilterSameField    = "UniversalFilterTheSameField"

	// Prefixes completed by a FieldID.
	TokenSortFieldPrefix         = "UniversalSortField_"
	TokenFilterFieldPrefix       = "UniversalFilterField_"
	TokenFilterSecondFieldPrefix = "UniversalFilterSecondField_"
)

const fieldsPerRow = 3

var fieldLabels = map[domain.FieldID]string{
	domain.FieldIdentifier:    "ID",
	domain.FieldFullName:      "Full name",
	domain.FieldGlobalID:      "Global ID",
	domain.FieldShortName:     "Short name",
	domain.FieldAdmArea:       "Adm. area",
	domain.FieldDistrict:      "District",
	domain.FieldAddress:       "Address",
	domain.FieldOwner:         "Owner",
	domain.FieldTestDate:      "Test date",
	domain.FieldGeodataCenter: "Geodata center",
	domain.FieldGeoarea:       "Geoarea",
}

func fieldLabel(f domain.FieldID) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

func kindHint(f domain.FieldID) string {
	field, err := schema.Resolve(f)
	if err != nil {
		return ""
	}
	return field.Kind().Hint()
}

var backRow = navigation.Row(navigation.Choice{Label: "⬅️ Back", Token: TokenBack})

func rootFrame() navigation.Frame {
	return navigation.NewFrame(promptRoot,
		navigation.Row(
			navigation.Choice{Label: "↕️ Sort", Token: TokenSorting},
			navigation.Choice{Label: "🔎 Filter", Token: TokenFiltration},
		),
	)
}

func sortFrame() navigation.Frame {
	return navigation.NewFrame(promptSort,
		navigation.Row(
			navigation.Choice{Label: "Test date ⬆️", Token: TokenSortTestDateAsc},
			navigation.Choice{Label: "Test date ⬇️", Token: TokenSortTestDateDesc},
		),
		navigation.Row(navigation.Choice{Label: "Sort by any field", Token: TokenUniversalSort}),
		backRow,
	)
}

func filterFrame() navigation.Frame {
	return navigation.NewFrame(promptFilter,
		navigation.Row(
			navigation.Choice{Label: "By district", Token: TokenFilterDistrict},
			navigation.Choice{Label: "By owner", Token: TokenFilterOwner},
		),
		navigation.Row(navigation.Choice{Label: "By adm. area and owner", Token: TokenFilterAdmAreaOwner}),
		navigation.Row(navigation.Choice{Label: "More detailed filtering", Token: TokenDetailedFiltering}),
		backRow,
	)
}

// fieldRows lays out one button per registry field, skipping except.
func fieldRows(prefix string, except domain.FieldID) [][]navigation.Choice {
	var (
		rows [][]navigation.Choice
		row  []navigation.Choice
	)
	for _, f := range domain.Fields() {
		if f == except {
			continue
		}
		row = append(row, navigation.Choice{Label: fieldLabel(f), Token: prefix + string(f)})
		if len(row) == fieldsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func sortFieldFrame() navigation.Frame {
	rows := fieldRows(TokenSortFieldPrefix, "")
	return navigation.NewFrame(promptSortField, append(rows, backRow)...)
}

func sortSideFrame(field domain.FieldID) navigation.Frame {
	return navigation.NewFrame(fmt.Sprintf(promptSortSide, fieldLabel(field)),
		navigation.Row(
			navigation.Choice{Label: "⬆️ Ascending", Token: TokenSortAscending},
			navigation.Choice{Label: "⬇️ Descending", Token: TokenSortDescending},
		),
		backRow,
	)
}

func filterFieldFrame() navigation.Frame {
	rows := fieldRows(TokenFilterFieldPrefix, "")
	return navigation.NewFrame(promptFilterBy, append(rows, backRow)...)
}

func secondFieldFrame(first domain.FieldID) navigation.Frame {
	rows := [][]navigation.Choice{
		navigation.Row(navigation.Choice{Label: "Only " + fieldLabel(first), Token: TokenFilterSameField}),
	}
	rows = append(rows, fieldRows(TokenFilterSecondFieldPrefix, first)...)
	return navigation.NewFrame(fmt.Sprintf(promptSecond, fieldLabel(first)), append(rows, backRow)...)
}

// exportFrame offers the output formats. Menus pushed onto the stack carry a
// Back button; the one sent after a filter result does not.
func exportFrame(prompt string, withBack bool) navigation.Frame {
	rows := [][]navigation.Choice{
		navigation.Row(
			navigation.Choice{Label: "📄 JSON", Token: TokenSendJSON},
			navigation.Choice{Label: "📊 CSV", Token: TokenSendCSV},
		),
	}
	if withBack {
		rows = append(rows, backRow)
	}
	return navigation.NewFrame(prompt, rows...)
}

func sortedPrompt(n int, field domain.FieldID, reverse bool) string {
	dir := directionAsc
	if reverse {
		dir = directionDesc
	}
	return fmt.Sprintf(promptSorted, n, fieldLabel(field), dir)
}

// filterFields expands the combined AdmAreaAndOwner selection into its two
// attributes and defaults an unset second field to None.
func filterFields(st domain.SessionState) (domain.FieldID, domain.FieldID) {
	if st.FilterField1 == domain.FieldAdmAreaAndOwner {
		return domain.FieldAdmArea, domain.FieldOwner
	}
	f2 := st.FilterField2
	if !f2.IsSet() {
		f2 = domain.FieldNone
	}
	return st.FilterField1, f2
}

func filterPrompt(st domain.SessionState) string {
	f1, f2 := filterFields(st)
	if f2 == domain.FieldNone || f2 == f1 {
		return fmt.Sprintf(msgFilterSingle, fieldLabel(f1), kindHint(f1))
	}
	return fmt.Sprintf(msgFilterCompound, fieldLabel(f1), kindHint(f1), fieldLabel(f2), kindHint(f2))
}

func exportFormat(token string) codec.Format {
	if token == TokenSendCSV {
		return codec.CSV
	}
	return codec.JSON
}
