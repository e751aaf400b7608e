package codec_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/datadesk/pkg/codec"
	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonSample = `[
  {
    "ID": 1,
    "FullName": "Station & Co",
    "global_id": 100,
    "ShortName": "S1",
    "AdmArea": "Central",
    "District": "Arbat",
    "Address": "Street <1>",
    "Owner": "X",
    "TestDate": "2020-01-01T00:00:00",
    "geodata_center": "",
    "geoarea": ""
  },
  {
    "ID": 2,
    "FullName": "Station 2",
    "global_id": 200,
    "ShortName": "S2",
    "AdmArea": "Central",
    "District": "Tverskoy",
    "Address": "Street 2",
    "Owner": "Y",
    "TestDate": "15.06.2021",
    "geodata_center": "",
    "geoarea": ""
  }
]`

func TestDecodeJSON(t *testing.T) {
	ds, err := codec.DecodeJSON([]byte(jsonSample))
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.Equal(t, "Station & Co", ds[0].FullName)
	assert.Equal(t, 100, ds[0].GlobalID)
	assert.True(t, ds[0].TestDate.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, ds[1].TestDate.Equal(time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)))
}

func TestDecodeJSON_DateLayouts(t *testing.T) {
	for _, raw := range []string{"2021-06-15T00:00:00", "2021-06-15T00:00:00Z", "2021-06-15", "15.06.2021", "15.6.2021"} {
		ds, err := codec.DecodeJSON([]byte(`[{"ID":1,"TestDate":"` + raw + `"}]`))
		require.NoError(t, err, raw)
		y, m, d := ds[0].TestDate.Date()
		assert.Equal(t, []int{2021, 6, 15}, []int{y, int(m), d}, raw)
	}

	ds, err := codec.DecodeJSON([]byte(`[{"ID":1,"TestDate":null}]`))
	require.NoError(t, err)
	assert.True(t, ds[0].TestDate.IsZero())
}

func TestDecodeJSON_Malformed(t *testing.T) {
	for _, data := range []string{`{`, `{"ID":1}`, `[{"ID":"one"}]`, `[{"TestDate":"yesterday"}]`} {
		_, err := codec.DecodeJSON([]byte(data))
		var perr *codec.ParseError
		assert.ErrorAs(t, err, &perr, data)
	}
}

func TestEncodeJSON(t *testing.T) {
	ds := domain.Dataset{{
		ID: 1, FullName: "Station & Co", GlobalID: 100, Address: "Street <1>",
		TestDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}}

	out, err := codec.EncodeJSON(ds)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Station & Co"`, "HTML characters must not be escaped")
	assert.Contains(t, string(out), `"Street <1>"`)
	assert.Contains(t, string(out), `"TestDate": "2020-01-01T00:00:00"`)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.ElementsMatch(t,
		[]string{"ID", "FullName", "global_id", "ShortName", "AdmArea", "District", "Address", "Owner", "TestDate", "geodata_center", "geoarea"},
		keys(raw[0]))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
