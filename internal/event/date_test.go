package event

import (
	"errors"
	"testing"
	"time"
)

func TestFromEpoch(t *testing.T) {
	want := time.Date(2021, time.January, 8, 13, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   float64
		want time.Time
	}{
		{name: "seconds", in: 1610112600, want: want},
		{name: "milliseconds", in: 1610112600000, want: want},
		{name: "zero", in: 0, want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromEpoch(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("FromEpoch(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if !got.IsZero() && got.Location() != time.UTC {
				t.Errorf("FromEpoch(%v) location = %v, want UTC", tt.in, got.Location())
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		label      string
		wantHour   int
		wantMinute int
		wantOK     bool
	}{
		{"8:30am", 8, 30, true},
		{"12:00am", 0, 0, true},
		{"12:15pm", 12, 15, true},
		{"2:00pm", 14, 0, true},
		{" 10:45PM ", 22, 45, true},
		{"All Day", 0, 0, false},
		{"Tentative", 0, 0, false},
		{"Day 2", 0, 0, false},
		{"13:00pm", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			h, m, ok := ParseClock(tt.label)
			if ok != tt.wantOK || h != tt.wantHour || m != tt.wantMinute {
				t.Errorf("ParseClock(%q) = %d, %d, %v; want %d, %d, %v",
					tt.label, h, m, ok, tt.wantHour, tt.wantMinute, tt.wantOK)
			}
		})
	}
}

func TestEventWhen(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	// local midnights in New York
	jan8 := &Day{Dateline: Number(time.Date(2021, time.January, 8, 0, 0, 0, 0, ny).Unix())}
	jul9 := &Day{Dateline: Number(time.Date(2021, time.July, 9, 0, 0, 0, 0, ny).Unix())}
	mar14 := &Day{Dateline: Number(time.Date(2021, time.March, 14, 0, 0, 0, 0, ny).Unix())}

	tests := []struct {
		name    string
		event   Event
		day     *Day
		want    time.Time
		wantErr error
	}{
		{
			name:  "event dateline wins",
			event: Event{Dateline: 1610112600, TimeLabel: "11:00pm"},
			day:   jan8,
			want:  time.Date(2021, time.January, 8, 13, 30, 0, 0, time.UTC),
		},
		{
			name:  "winter local time label",
			event: Event{TimeLabel: "8:30am"},
			day:   jan8,
			want:  time.Date(2021, time.January, 8, 13, 30, 0, 0, time.UTC),
		},
		{
			name:  "summer local time label",
			event: Event{TimeLabel: "8:30am"},
			day:   jul9,
			want:  time.Date(2021, time.July, 9, 12, 30, 0, 0, time.UTC),
		},
		{
			name:  "late evening rolls over to next UTC day",
			event: Event{TimeLabel: "10:00pm"},
			day:   jan8,
			want:  time.Date(2021, time.January, 9, 3, 0, 0, 0, time.UTC),
		},
		{
			name:  "DST change day",
			event: Event{TimeLabel: "8:30am"},
			day:   mar14,
			want:  time.Date(2021, time.March, 14, 12, 30, 0, 0, time.UTC),
		},
		{
			name:  "all day maps to local midnight",
			event: Event{TimeLabel: "All Day"},
			day:   jan8,
			want:  time.Date(2021, time.January, 8, 5, 0, 0, 0, time.UTC),
		},
		{
			name:    "no dateline at all",
			event:   Event{TimeLabel: "8:30am"},
			day:     &Day{},
			wantErr: ErrNoTime,
		},
		{
			name:    "no day",
			event:   Event{},
			wantErr: ErrNoTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.event.When(tt.day, ny)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("When() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("When() unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("When() = %v, want %v", got, tt.want)
			}
		})
	}
}
