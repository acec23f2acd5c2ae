package filter

import (
	"reflect"
	"testing"

	"github.com/pfrederiksen/ff-calendar/internal/event"
)

func TestNew_Normalizes(t *testing.T) {
	f := New([]string{"usd", " eur ", ""}, []string{"High", "Non-Economic"})

	if got := f.Currencies.Values(); !reflect.DeepEqual(got, []string{"EUR", "USD"}) {
		t.Errorf("Currencies = %v", got)
	}
	if got := f.Impacts.Values(); !reflect.DeepEqual(got, []string{"high", "holiday"}) {
		t.Errorf("Impacts = %v", got)
	}
}

func TestFilter_Matches(t *testing.T) {
	f := New([]string{"USD"}, []string{"high", "holiday"})

	tests := []struct {
		name string
		row  event.Row
		want bool
	}{
		{name: "usd high", row: event.Row{Currency: "USD", Impact: "high"}, want: true},
		{name: "usd holiday", row: event.Row{Currency: "USD", Impact: "holiday"}, want: true},
		{name: "usd low", row: event.Row{Currency: "USD", Impact: "low"}, want: false},
		{name: "eur high", row: event.Row{Currency: "EUR", Impact: "high"}, want: false},
		{name: "lowercase currency is not normalized at match time", row: event.Row{Currency: "usd", Impact: "high"}, want: false},
		{name: "empty row", row: event.Row{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Matches(tt.row); got != tt.want {
				t.Errorf("Matches(%+v) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	f := New([]string{"USD", "EUR"}, []string{"high"})
	rows := []event.Row{
		{ID: "1", Currency: "USD", Impact: "high"},
		{ID: "2", Currency: "JPY", Impact: "high"},
		{ID: "3", Currency: "EUR", Impact: "high"},
		{ID: "4", Currency: "EUR", Impact: "medium"},
	}

	got := f.Apply(rows)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("Apply() = %+v, want ids 1 and 3 in order", got)
	}
}

func TestIsSpeech(t *testing.T) {
	tests := []struct {
		name string
		row  event.Row
		want bool
	}{
		{name: "speaks category", row: event.Row{Impact: "speaks", Title: "Powell Testimony"}, want: true},
		{name: "speaks in title", row: event.Row{Impact: "high", Title: "Fed Chair Powell Speaks"}, want: true},
		{name: "speaks upper case", row: event.Row{Impact: "medium", Title: "BOE GOV BAILEY SPEAKS"}, want: true},
		{name: "release", row: event.Row{Impact: "high", Title: "Non-Farm Payrolls"}, want: false},
		{name: "holiday", row: event.Row{Impact: "holiday", Title: "Bank Holiday"}, want: false},
		{name: "substring only", row: event.Row{Impact: "low", Title: "Speakspeak Index"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSpeech(tt.row); got != tt.want {
				t.Errorf("IsSpeech(%+v) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}

func TestRemoveSpeeches(t *testing.T) {
	rows := []event.Row{
		{ID: "a", Impact: "high", Title: "CPI m/m"},
		{ID: "b", Impact: "speaks", Title: "Fed Chair Speaks"},
		{ID: "c", Impact: "holiday", Title: "Bank Holiday"},
	}

	got := RemoveSpeeches(rows)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("RemoveSpeeches() = %+v", got)
	}

	clean := []event.Row{rows[0], rows[2]}
	if got := RemoveSpeeches(clean); !reflect.DeepEqual(got, clean) {
		t.Errorf("RemoveSpeeches() removed rows from a clean set: %+v", got)
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"USD", []string{"USD"}},
		{"USD, EUR", []string{"USD", "EUR"}},
		{"high holiday", []string{"high", "holiday"}},
		{" ,; ", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseList(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
