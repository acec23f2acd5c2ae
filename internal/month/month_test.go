package month

import (
	"testing"
	"time"
)

func TestRange(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{
			name:      "original default range",
			start:     time.Date(2020, time.September, 1, 0, 0, 0, 0, time.UTC),
			end:       time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
			wantCount: 64,
			wantFirst: "2020-09",
			wantLast:  "2025-12",
		},
		{
			name:      "single month mid-month dates",
			start:     time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC),
			end:       time.Date(2021, time.January, 20, 0, 0, 0, 0, time.UTC),
			wantCount: 1,
			wantFirst: "2021-01",
			wantLast:  "2021-01",
		},
		{
			name:      "year rollover",
			start:     time.Date(2021, time.November, 30, 0, 0, 0, 0, time.UTC),
			end:       time.Date(2022, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantCount: 4,
			wantFirst: "2021-11",
			wantLast:  "2022-02",
		},
		{
			name:      "end before start",
			start:     time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC),
			end:       time.Date(2022, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := Range(tt.start, tt.end)
			if len(keys) != tt.wantCount {
				t.Fatalf("Range() returned %d keys, want %d", len(keys), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if got := keys[0].String(); got != tt.wantFirst {
				t.Errorf("first = %s, want %s", got, tt.wantFirst)
			}
			if got := keys[len(keys)-1].String(); got != tt.wantLast {
				t.Errorf("last = %s, want %s", got, tt.wantLast)
			}
			for i := 1; i < len(keys); i++ {
				if !keys[i-1].Before(keys[i]) {
					t.Errorf("keys not chronological at %d: %s then %s", i, keys[i-1], keys[i])
				}
			}
		})
	}
}

func TestKeyNames(t *testing.T) {
	k := Key{Year: 2021, Month: time.January}

	if got := k.Token(); got != "jan.2021" {
		t.Errorf("Token() = %q, want jan.2021", got)
	}
	if got := k.URL("https://www.forexfactory.com/calendar"); got != "https://www.forexfactory.com/calendar?month=jan.2021" {
		t.Errorf("URL() = %q", got)
	}
	if got := k.URL("https://example.test/cal?x=1"); got != "https://example.test/cal?x=1&month=jan.2021" {
		t.Errorf("URL() with query = %q", got)
	}
	if got := k.FileName(); got != "days_2021_01.json" {
		t.Errorf("FileName() = %q", got)
	}
	if got := k.ScreenshotName(); got != "cf_block_2021_01.png" {
		t.Errorf("ScreenshotName() = %q", got)
	}
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name    string
		want    Key
		wantErr bool
	}{
		{name: "days_2021_01.json", want: Key{Year: 2021, Month: time.January}},
		{name: "days_2025_12.json", want: Key{Year: 2025, Month: time.December}},
		{name: "days_2021_13.json", wantErr: true},
		{name: "days_2021_1.json", wantErr: true},
		{name: "cf_block_2021_01.png", wantErr: true},
		{name: "days_2021_01.json.tmp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFileName(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseFileName(%q) expected error, got %v", tt.name, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFileName(%q) error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseFileName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestNewNormalizes(t *testing.T) {
	if got := New(2021, 13); got != (Key{Year: 2022, Month: time.January}) {
		t.Errorf("New(2021, 13) = %v", got)
	}
	if got := New(2021, 0); got != (Key{Year: 2020, Month: time.December}) {
		t.Errorf("New(2021, 0) = %v", got)
	}
}
