package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Airtable field names of the catalog table.
const (
	FieldAlbum  = "Album Name"
	FieldArtist = "Artist"
	FieldYear   = "Album Year"
	FieldStatus = "Status"
	FieldGift   = "Gift"
	FieldGender = "Gender"
	FieldImages = "Images"
)

var (
	// ErrUnauthorized is returned when the caller has no verifiable identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller's email is not on the allow-list.
	ErrForbidden = errors.New("forbidden")
	// ErrNotConfigured is returned when the catalog store lacks credentials.
	ErrNotConfigured = errors.New("catalog store not configured")
	// ErrMissingRecordID is returned when an update or delete names no record.
	ErrMissingRecordID = errors.New("record id is required")
)

// User is an identity resolved from a bearer token.
type User struct {
	Email string `json:"email"`
}

// RawRecord is a record as stored in the catalog table.
type RawRecord struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// Record is the flattened view of a catalog record shown to admins.
type Record struct {
	ID     string `json:"id"`
	Album  string `json:"album"`
	Artist string `json:"artist"`
	Year   string `json:"year"`
	Status string `json:"status"`
	Gift   string `json:"gift"`
	Gender string `json:"gender"`
	Image  string `json:"image"`
}

// FromRaw flattens a stored record.
func FromRaw(raw RawRecord) Record {
	f := raw.Fields
	return Record{
		ID:     raw.ID,
		Album:  text(f[FieldAlbum]),
		Artist: text(f[FieldArtist]),
		Year:   text(f[FieldYear]),
		Status: text(f[FieldStatus]),
		Gift:   text(f[FieldGift]),
		Gender: gender(f[FieldGender]),
		Image:  firstImage(f[FieldImages]),
	}
}

// FromRawList flattens a list of stored records.
func FromRawList(raws []RawRecord) []Record {
	out := make([]Record, 0, len(raws))
	for _, r := range raws {
		out = append(out, FromRaw(r))
	}
	return out
}

// RecordInput is an admin write request.
type RecordInput struct {
	ID     string `json:"id"`
	Album  string `json:"album"`
	Artist string `json:"artist"`
	Year   Year   `json:"year"`
	Status string `json:"status"`
	Gift   string `json:"gift"`
	Image  string `json:"image"`
}

// Fields renders the input as table fields. Album and artist are always written.
func (in RecordInput) Fields() map[string]any {
	fields := map[string]any{
		FieldAlbum:  in.Album,
		FieldArtist: in.Artist,
	}
	if in.Year != "" {
		fields[FieldYear] = string(in.Year)
	}
	if in.Status != "" {
		fields[FieldStatus] = in.Status
	}
	if in.Gift != "" {
		fields[FieldGift] = in.Gift
	}
	if in.Image != "" {
		fields[FieldImages] = []map[string]string{{"url": in.Image}}
	}
	return fields
}

// Year accepts a JSON string or number. Zero and null are treated as unset.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*y = Year(s)
		return nil
	}
	var n *json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year must be a string or number: %w", err)
	}
	if n == nil || *n == "0" {
		*y = ""
		return nil
	}
	*y = Year(n.String())
	return nil
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return ""
	}
	return fmt.Sprint(v)
}

// gender accepts a multi-select list, a single select, or a lookup/formula object.
func gender(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, text(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		for _, key := range []string{"name", "value", "text", "result"} {
			if s := text(t[key]); s != "" {
				return s
			}
		}
		return ""
	}
	return text(v)
}

func firstImage(v any) string {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	img, _ := list[0].(map[string]any)
	return text(img["url"])
}
