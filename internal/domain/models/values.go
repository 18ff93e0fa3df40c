// internal/domain/models/values.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ID is a backend identifier. The backend sends ids either as JSON numbers
// (payments: 1) or strings (users: "u1"); both decode to the same text form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// IsZero reports whether no id was sent.
func (id ID) IsZero() bool { return id == "" }

// Count is a non-negative counter. The backend sends counters as numbers,
// floats ("5.0") or numeric strings ("5", as COUNT(*) often arrives); anything
// else decodes to 0 rather than failing the whole response.
type Count int64

func (c *Count) UnmarshalJSON(b []byte) error {
	*c = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*c = Count(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*c = Count(f)
	}
	return nil
}

// Flag is a boolean that may arrive as true/false, 0/1 or their string
// forms. Unrecognized values decode to false.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = false
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		*f = true
	}
	return nil
}

// Amount is a monetary value that may arrive as a number or as a
// preformatted string ("$1,200"). Text holds the string form when the backend
// did not send a number.
type Amount struct {
	Value    float64
	IsNumber bool
	Text     string
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*a = Amount{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		a.Text = s
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	a.Value = f
	a.IsNumber = true
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.IsNumber {
		return json.Marshal(a.Value)
	}
	if a.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(a.Text)
}

// Float returns the numeric value, parsing Text when the backend sent a
// string. Unparseable text yields 0.
func (a Amount) Float() float64 {
	if a.IsNumber {
		return a.Value
	}
	s := strings.NewReplacer("$", "", ",", "", " ", "").Replace(a.Text)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Timestamp decodes created_at values. Valid is false when the field was
// missing or could not be parsed.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = Timestamp{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '"' {
		// epoch milliseconds
		var ms int64
		if err := json.Unmarshal(b, &ms); err != nil {
			return nil
		}
		t.Time = time.UnixMilli(ms).UTC()
		t.Valid = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			t.Time = parsed
			t.Valid = true
			return nil
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
