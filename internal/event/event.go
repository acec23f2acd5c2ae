package event

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Day is one calendar day as stored in a raw month document.
// Only the fields the pipeline reads are decoded; the document on disk keeps
// every source field verbatim.
type Day struct {
	Dateline Number  `json:"dateline"`
	Events   []Event `json:"events"`
}

// Event is one entry of a Day
type Event struct {
	ID           Text   `json:"id"`
	Dateline     Number `json:"dateline"`
	Currency     string `json:"currency"`
	ImpactName   string `json:"impactName"`
	ImpactTitle  string `json:"impactTitle"`
	PrefixedName string `json:"prefixedName"`
	Name         string `json:"name"`
	SoloTitle    string `json:"soloTitle"`
	TimeLabel    string `json:"timeLabel"`
}

// lineEndings folds CRLF and lone CR to LF, the only line break a CSV
// round trip preserves
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Title returns the best available display title with line endings folded to \n
func (e *Event) Title() string {
	for _, s := range []string{e.PrefixedName, e.Name, e.SoloTitle} {
		if s = strings.TrimSpace(s); s != "" {
			return lineEndings.Replace(s)
		}
	}
	return ""
}

// Impact returns the normalized impact label
func (e *Event) Impact() string {
	if e.ImpactName != "" {
		return NormalizeImpact(e.ImpactName)
	}
	return NormalizeImpact(e.ImpactTitle)
}

// Text is a string that also accepts JSON numbers (source ids are numeric on
// some pages and strings on others).
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: want string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// Number is a float64 that also accepts numeric strings and treats null or ""
// as zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("dateline: %w", err)
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("dateline: %w", err)
	}
	*n = Number(v)
	return nil
}

// DecodeDays decodes a raw month document
func DecodeDays(data []byte) ([]Day, error) {
	var days []Day
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("decoding days: %w", err)
	}
	return days, nil
}

// GenerateKey creates a deterministic dedupe key for rows without a source id
func GenerateKey(datetime, currency, title string) string {
	h := sha1.New()
	h.Write([]byte(datetime + "|" + currency + "|" + title))
	return fmt.Sprintf("%x", h.Sum(nil))
}
