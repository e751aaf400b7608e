package domain

// FieldID names an attribute of a Record. The empty value means unset.
type FieldID string

const (
	FieldIdentifier    FieldID = "Id"
	FieldFullName      FieldID = "FullName"
	FieldGlobalID      FieldID = "GlobalId"
	FieldShortName     FieldID = "ShortName"
	FieldAdmArea       FieldID = "AdmArea"
	FieldDistrict      FieldID = "District"
	FieldAddress       FieldID = "Address"
	FieldOwner         FieldID = "Owner"
	FieldTestDate      FieldID = "TestDate"
	FieldGeodataCenter FieldID = "GeodataCenter"
	FieldGeoarea       FieldID = "Geoarea"

	// FieldAdmAreaAndOwner is a filter shortcut for the AdmArea + Owner pair.
	FieldAdmAreaAndOwner FieldID = "AdmAreaAndOwner"
	// FieldNone marks the absence of a second filter field.
	FieldNone FieldID = "None"
)

// Fields lists the record attributes in column order.
func Fields() []FieldID {
	return []FieldID{
		FieldIdentifier, FieldFullName, FieldGlobalID, FieldShortName,
		FieldAdmArea, FieldDistrict, FieldAddress, FieldOwner,
		FieldTestDate, FieldGeodataCenter, FieldGeoarea,
	}
}

// ParseFieldID maps a token suffix such as "Owner" back to its FieldID.
// Sentinels are accepted too; callers decide whether they may appear.
func ParseFieldID(s string) (FieldID, bool) {
	switch id := FieldID(s); id {
	case FieldAdmAreaAndOwner, FieldNone:
		return id, true
	default:
		for _, f := range Fields() {
			if f == id {
				return id, true
			}
		}
	}
	return "", false
}

// IsSentinel reports whether the id is a placeholder rather than an attribute.
func (f FieldID) IsSentinel() bool {
	return f == FieldAdmAreaAndOwner || f == FieldNone
}

// IsSet reports whether a field has been chosen.
func (f FieldID) IsSet() bool {
	return f != ""
}

func (f FieldID) String() string {
	return string(f)
}
