package loader

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func withEventDates(start, end string) map[string]string {
	files := fixture()
	info := files["shambhala/event-info.yml"]
	info = strings.Replace(info, "startDate: 2025-07-11", "startDate: "+start, 1)
	info = strings.Replace(info, "endDate: 2025-07-13", "endDate: "+end, 1)
	files["shambhala/event-info.yml"] = info
	return files
}

func TestLoadEventDatesInEventZone(t *testing.T) {
	t.Parallel()
	loc := vancouver(t)

	tests := []struct {
		name       string
		start, end string
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{
			name:      "bare dates",
			start:     "2025-07-11",
			end:       "2025-07-13",
			wantStart: time.Date(2025, 7, 11, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2025, 7, 14, 0, 0, 0, 0, loc),
		},
		{
			name:      "quoted dates",
			start:     `"2025-07-11"`,
			end:       `"2025-07-13"`,
			wantStart: time.Date(2025, 7, 11, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2025, 7, 14, 0, 0, 0, 0, loc),
		},
		{
			name:      "one day festival",
			start:     "2025-07-12",
			end:       "2025-07-12",
			wantStart: time.Date(2025, 7, 12, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2025, 7, 13, 0, 0, 0, 0, loc),
		},
		{
			name:      "zone-less date-times",
			start:     "2025-07-11T12:00:00",
			end:       "2025-07-13 23:00:00",
			wantStart: time.Date(2025, 7, 11, 12, 0, 0, 0, loc),
			wantEnd:   time.Date(2025, 7, 13, 23, 0, 0, 0, loc),
		},
		{
			name:      "explicit offset",
			start:     "2025-07-11T19:00:00Z",
			end:       "2025-07-14T07:00:00Z",
			wantStart: time.Date(2025, 7, 11, 19, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 7, 14, 7, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := loadFixture(t, withEventDates(tt.start, tt.end), Options{})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			info := cfg.Events[0].Info
			if !info.StartTime.Equal(tt.wantStart) {
				t.Errorf("StartTime = %v, want %v", info.StartTime, tt.wantStart)
			}
			if !info.EndTime.Equal(tt.wantEnd) {
				t.Errorf("EndTime = %v, want %v", info.EndTime, tt.wantEnd)
			}
			for _, ve := range Validate(cfg) {
				if errors.Is(ve.Err, ErrTimeOrder) {
					t.Errorf("Validate: %v", ve.Err)
				}
			}
		})
	}
}

func TestLoadPostTimestampsInEventZone(t *testing.T) {
	t.Parallel()
	loc := vancouver(t)

	tests := []struct {
		name string
		post string
		want time.Time
	}{
		{
			name: "yaml bare date",
			post: "---\ntimestamp: 2025-07-01\n---\nHi.\n",
			want: time.Date(2025, 7, 1, 0, 0, 0, 0, loc),
		},
		{
			name: "yaml offset",
			post: "---\ntimestamp: 2025-07-01T09:00:00Z\n---\nHi.\n",
			want: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "toml local date",
			post: "+++\ntimestamp = 2025-07-01\n+++\nHi.\n",
			want: time.Date(2025, 7, 1, 0, 0, 0, 0, loc),
		},
		{
			name: "toml local date-time",
			post: "+++\ntimestamp = 2025-07-01T09:00:00\n+++\nHi.\n",
			want: time.Date(2025, 7, 1, 9, 0, 0, 0, loc),
		},
		{
			name: "toml offset date-time",
			post: "+++\ntimestamp = 2025-07-01T09:00:00-04:00\n+++\nHi.\n",
			want: time.Date(2025, 7, 1, 13, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			files := fixture()
			files["shambhala/communications/general/Welcome.md"] = tt.post
			cfg, err := loadFixture(t, files, Options{})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			post := cfg.Events[0].Channels[0].Posts[0]
			if post.Timestamp == nil || !post.Timestamp.Equal(tt.want) {
				t.Errorf("Timestamp = %v, want %v", post.Timestamp, tt.want)
			}
		})
	}
}

func TestValidateReportsZeroLengthSet(t *testing.T) {
	t.Parallel()
	files := fixture()
	files["shambhala/schedules/2025-07-12.yml"] = `stages:
  Grove:
    - {artist: Cantos, start: "20:00", end: "20:00"}
`
	cfg, err := loadFixture(t, files, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var found bool
	for _, ve := range Validate(cfg) {
		if ve.Category == ValCatTimeOrder && errors.Is(ve.Err, ErrTimeOrder) {
			found = true
		}
	}
	if !found {
		t.Errorf("Validate(%v) missed the zero-length set", Validate(cfg))
	}
}
