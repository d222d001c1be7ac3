// Package festivalpro converts a FestivalPro JSON export into schedule files.
// Sets are grouped into festival days that start at a configurable time of
// day, so a 01:00 set belongs to the previous evening's schedule.
package festivalpro

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"

	"github.com/papapumpkin/lineup/internal/loader"
	"github.com/papapumpkin/lineup/internal/model"
)

// DefaultDayBoundary is the time of day a festival day starts.
const DefaultDayBoundary = loader.DayBoundary

// Sentinel errors for import failures.
var (
	// ErrInvalidJSON indicates the export is not well-formed JSON or has no
	// performance list.
	ErrInvalidJSON = errors.New("invalid festivalpro export")

	// ErrMissingField indicates a performance lacks a required field.
	ErrMissingField = errors.New("missing field")

	// ErrEventDir indicates the target event directory does not exist.
	ErrEventDir = errors.New("event directory not found")
)

// Options controls an import.
type Options struct {
	// Location is the zone times of day are written in. Nil uses UTC.
	Location *time.Location
	// DayBoundary is the offset from midnight at which a festival day
	// starts. Zero uses DefaultDayBoundary.
	DayBoundary time.Duration
	// DryRun renders the schedules without writing them.
	DryRun bool
}

// Written describes one rendered schedule file.
type Written struct {
	Path         string
	Date         string
	Performances int
	Data         []byte
}

// Result is the outcome of an import.
type Result struct {
	Schedules []Written
	// Warnings are non-fatal problems, such as a set that would read back
	// on a different day than the one it was exported for.
	Warnings []string
}

// misplaced returns the first set the schedule file cannot express. Read
// back, a set starts on date d, or on the next day when it starts before
// loader.DayBoundary and its stage also starts a set at or after it.
func misplaced(d string, perfs []model.Performance, loc *time.Location) (model.Performance, bool) {
	clock := func(t time.Time) time.Duration {
		t = t.In(loc)
		return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	}
	late := false
	for _, p := range perfs {
		late = late || clock(p.StartTime) >= loader.DayBoundary
	}
	day, _ := time.Parse(loader.DateLayout, d)
	for _, p := range perfs {
		want := day
		if late && clock(p.StartTime) < loader.DayBoundary {
			want = want.AddDate(0, 0, 1)
		}
		if p.StartTime.In(loc).Format(loader.DateLayout) != want.Format(loader.DateLayout) {
			return p, true
		}
	}
	return model.Performance{}, false
}

// ParseDayBoundary parses a "HH:MM" time of day into an offset from midnight.
func ParseDayBoundary(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultDayBoundary, nil
	}
	t, err := time.Parse(loader.ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("festivalpro: day boundary %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Parse decodes an export into one schedule per festival day, ordered by
// date.
func Parse(data []byte, opts Options) ([]model.Schedule, []string, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	boundary := opts.DayBoundary
	if boundary == 0 {
		boundary = DefaultDayBoundary
	}

	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("festivalpro: %w: malformed JSON", ErrInvalidJSON)
	}
	root := gjson.ParseBytes(data)
	list := root.Get("performances")
	if !list.Exists() && root.IsArray() {
		list = root
	}
	if !list.IsArray() {
		return nil, nil, fmt.Errorf("festivalpro: %w: no performances array", ErrInvalidJSON)
	}

	days := make(map[string]*model.Schedule)
	for i, r := range list.Array() {
		p, err := performance(r, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("festivalpro: performance %d: %w", i, err)
		}
		date := p.StartTime.In(loc).Add(-boundary).Format(loader.DateLayout)
		s, ok := days[date]
		if !ok {
			s = &model.Schedule{
				Source:         date,
				Metadata:       model.ScheduleMetadata{Date: date},
				StageSchedules: make(map[string][]model.Performance),
			}
			days[date] = s
		}
		s.StageSchedules[p.StageName] = append(s.StageSchedules[p.StageName], p)
	}

	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var (
		out      []model.Schedule
		warnings []string
	)
	for _, d := range dates {
		s := days[d]
		for stage, perfs := range s.StageSchedules {
			sort.SliceStable(perfs, func(i, j int) bool { return perfs[i].StartTime.Before(perfs[j].StartTime) })
			if p, ok := misplaced(d, perfs, loc); ok {
				warnings = append(warnings, fmt.Sprintf("%s: stage %q set at %s will not resolve to the same day from the schedule file",
					d, stage, p.StartTime.In(loc).Format(time.RFC3339)))
			}
			for _, p := range perfs {
				if s.Metadata.StartTime.IsZero() || p.StartTime.Before(s.Metadata.StartTime) {
					s.Metadata.StartTime = p.StartTime
				}
				if p.EndTime.After(s.Metadata.EndTime) {
					s.Metadata.EndTime = p.EndTime
				}
			}
		}
		out = append(out, *s)
	}
	return out, warnings, nil
}

// performance reads one entry, accepting both the short and the long
// FestivalPro field names.
func performance(r gjson.Result, loc *time.Location) (model.Performance, error) {
	stage := field(r, "stage", "stageName")
	if stage == "" {
		return model.Performance{}, fmt.Errorf("%w: stage", ErrMissingField)
	}
	names := model.NewOrderedSet[string]()
	if n := field(r, "artist", "artistName"); n != "" {
		names.Add(n)
	}
	for _, a := range r.Get("artists").Array() {
		if n := strings.TrimSpace(a.String()); n != "" {
			names.Add(n)
		}
	}
	title := field(r, "title")
	if title == "" {
		title = strings.Join(names.Items(), " & ")
	}
	if title == "" {
		return model.Performance{}, fmt.Errorf("%w: artist", ErrMissingField)
	}

	start, err := instant(r, loc, "start", "startTime")
	if err != nil {
		return model.Performance{}, err
	}
	end, err := instant(r, loc, "end", "endTime")
	if err != nil {
		return model.Performance{}, err
	}

	p := model.Performance{
		Title:       title,
		ArtistNames: names,
		StartTime:   start,
		EndTime:     end,
		StageName:   stage,
	}
	if sub := field(r, "subtitle"); sub != "" {
		p.Subtitle = &sub
	}
	return p, nil
}

func field(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.Get(k).String()); v != "" {
			return v
		}
	}
	return ""
}

func instant(r gjson.Result, loc *time.Location, keys ...string) (time.Time, error) {
	raw := field(r, keys...)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMissingField, keys[0])
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", keys[0], err)
	}
	return t.In(loc), nil
}

// Import parses an export and writes one schedules/<date>.yml per festival
// day into eventDir, replacing files of the same name.
func Import(fs afero.Fs, data []byte, eventDir string, opts Options) (Result, error) {
	if ok, err := afero.DirExists(fs, eventDir); err != nil || !ok {
		return Result{}, fmt.Errorf("festivalpro: %w: %s", ErrEventDir, eventDir)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	schedules, warnings, err := Parse(data, opts)
	if err != nil {
		return Result{}, err
	}

	res := Result{Warnings: warnings}
	dir := filepath.Join(eventDir, "schedules")
	for _, s := range schedules {
		out, err := loader.EncodeSchedule(s, loc)
		if err != nil {
			return Result{}, fmt.Errorf("festivalpro: encode %s: %w", s.Metadata.Date, err)
		}
		n := 0
		for _, perfs := range s.StageSchedules {
			n += len(perfs)
		}
		res.Schedules = append(res.Schedules, Written{
			Path:         filepath.Join(dir, s.Metadata.Date+".yml"),
			Date:         s.Metadata.Date,
			Performances: n,
			Data:         out,
		})
	}
	if opts.DryRun {
		return res, nil
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("festivalpro: create %s: %w", dir, err)
	}
	for _, w := range res.Schedules {
		if err := afero.WriteFile(fs, w.Path, w.Data, 0o644); err != nil {
			return Result{}, fmt.Errorf("festivalpro: write %s: %w", w.Path, err)
		}
	}
	return res, nil
}
