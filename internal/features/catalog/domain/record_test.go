package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, body string) RawRecord {
	t.Helper()
	var raw RawRecord
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestFromRaw(t *testing.T) {
	raw := decodeRaw(t, `{
		"id": "rec1",
		"fields": {
			"Album Name": "Kind of Blue",
			"Artist": "Miles Davis",
			"Album Year": 1959,
			"Status": "Disponible",
			"Gift": "Sí",
			"Gender": ["Jazz", "Modal"],
			"Images": [{"url": "https://img.example.com/a.jpg"}, {"url": "https://img.example.com/b.jpg"}]
		}
	}`)

	got := FromRaw(raw)

	assert.Equal(t, Record{
		ID:     "rec1",
		Album:  "Kind of Blue",
		Artist: "Miles Davis",
		Year:   "1959",
		Status: "Disponible",
		Gift:   "Sí",
		Gender: "Jazz, Modal",
		Image:  "https://img.example.com/a.jpg",
	}, got)
}

func TestFromRaw_GenderShapes(t *testing.T) {
	tests := []struct {
		name   string
		gender string
		want   string
	}{
		{"Plain", `"Rock"`, "Rock"},
		{"ObjectName", `{"name": "Salsa"}`, "Salsa"},
		{"ObjectValue", `{"value": "Cumbia"}`, "Cumbia"},
		{"ObjectResult", `{"result": "Bolero"}`, "Bolero"},
		{"EmptyObject", `{}`, ""},
		{"Null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decodeRaw(t, `{"id":"rec","fields":{"Gender":`+tt.gender+`}}`)
			assert.Equal(t, tt.want, FromRaw(raw).Gender)
		})
	}
}

func TestFromRaw_EmptyFields(t *testing.T) {
	got := FromRaw(RawRecord{ID: "rec9"})
	assert.Equal(t, Record{ID: "rec9"}, got)
}

func TestRecordInput_Fields(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		in := RecordInput{Album: "Abbey Road", Artist: "The Beatles", Year: "1969", Status: "Vendido", Gift: "No", Image: "https://img.example.com/x.png"}

		fields := in.Fields()

		assert.Equal(t, "Abbey Road", fields[FieldAlbum])
		assert.Equal(t, "The Beatles", fields[FieldArtist])
		assert.Equal(t, "1969", fields[FieldYear])
		assert.Equal(t, "Vendido", fields[FieldStatus])
		assert.Equal(t, "No", fields[FieldGift])
		assert.Equal(t, []map[string]string{{"url": "https://img.example.com/x.png"}}, fields[FieldImages])
	})

	t.Run("OptionalOmitted", func(t *testing.T) {
		fields := RecordInput{}.Fields()

		assert.Len(t, fields, 2)
		assert.Equal(t, "", fields[FieldAlbum])
		assert.Equal(t, "", fields[FieldArtist])
	})
}

func TestYear_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		body string
		want Year
	}{
		{`{"year":"1977"}`, "1977"},
		{`{"year":1977}`, "1977"},
		{`{"year":0}`, ""},
		{`{"year":null}`, ""},
		{`{}`, ""},
	}

	for _, tt := range tests {
		var in RecordInput
		require.NoError(t, json.Unmarshal([]byte(tt.body), &in), tt.body)
		assert.Equal(t, tt.want, in.Year, tt.body)
	}

	var in RecordInput
	assert.Error(t, json.Unmarshal([]byte(`{"year":true}`), &in))
}
