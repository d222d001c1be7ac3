package loader

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/papapumpkin/lineup/internal/convert"
	"github.com/papapumpkin/lineup/internal/filetree"
	"github.com/papapumpkin/lineup/internal/model"
)

// DateLayout is the calendar date format used by schedule files and names.
const DateLayout = "2006-01-02"

// DayBoundary is the time of day a festival day starts. Sets that start
// earlier are the tail of the previous night when their stage also plays
// after the boundary on that schedule.
const DayBoundary = 6 * time.Hour

// ClockLayout is the time-of-day format written to schedule files.
const ClockLayout = "15:04"

// scheduleSource is a decoded but unresolved schedule file. Resolution needs
// the event's location, which is only known once event-info.yml is read.
type scheduleSource struct {
	Name string
	Path string
	File scheduleFile
}

func scheduleSourceConversion() convert.Conversion[filetree.Leaf, scheduleSource] {
	y := convert.YAMLFile[scheduleFile]()
	return convert.Func(
		func(leaf filetree.Leaf) (scheduleSource, error) {
			f, err := y.Apply(leaf.Data)
			if err != nil {
				return scheduleSource{}, convert.WithPath(err, leaf.Path)
			}
			return scheduleSource{Name: leaf.Name, Path: leaf.Path, File: f}, nil
		},
		func(s scheduleSource) (filetree.Leaf, error) {
			data, err := y.Unapply(s.File)
			return filetree.Leaf{Name: s.Name, Data: data}, err
		},
	)
}

// DecodeSchedule decodes and resolves one schedule file. name is the file
// name without extension and doubles as the date when the file has none.
func DecodeSchedule(name, path string, data []byte, loc *time.Location) (model.Schedule, error) {
	src, err := scheduleSourceConversion().Apply(filetree.Leaf{Name: name, Path: path, Data: data})
	if err != nil {
		return model.Schedule{}, err
	}
	return resolveSchedule(src, loc)
}

// EncodeSchedule renders a resolved schedule as schedule YAML, writing times
// of day in loc.
func EncodeSchedule(s model.Schedule, loc *time.Location) ([]byte, error) {
	src := unresolveSchedule(s, loc)
	leaf, err := scheduleSourceConversion().Unapply(src)
	return leaf.Data, err
}

// resolveSchedule places every performance of a schedule on an absolute
// instant. The calendar day comes from the date field, else the file name.
// A start before DayBoundary moves to the next day when the same stage has a
// start at or after it, and an end earlier than its start ends on the day
// after the set started. Source order does not matter. An end equal to its
// start is left in place for Validate to report.
func resolveSchedule(src scheduleSource, loc *time.Location) (model.Schedule, error) {
	day, err := scheduleDay(src)
	if err != nil {
		return model.Schedule{}, err
	}

	s := model.Schedule{
		Source: src.Name,
		Metadata: model.ScheduleMetadata{
			Date:        day.Format(DateLayout),
			CustomTitle: strings.TrimSpace(src.File.CustomTitle),
		},
		StageSchedules: make(map[string][]model.Performance, len(src.File.Stages)),
	}

	stages := make([]string, 0, len(src.File.Stages))
	for name := range src.File.Stages {
		stages = append(stages, name)
	}
	sort.Strings(stages)

	count := 0
	for _, stage := range stages {
		perfs, err := resolveStage(src.Path, day, stage, src.File.Stages[stage], loc)
		if err != nil {
			return model.Schedule{}, err
		}
		if len(perfs) == 0 {
			continue
		}
		s.StageSchedules[stage] = perfs
		for _, p := range perfs {
			if count == 0 || p.StartTime.Before(s.Metadata.StartTime) {
				s.Metadata.StartTime = p.StartTime
			}
			if count == 0 || p.EndTime.After(s.Metadata.EndTime) {
				s.Metadata.EndTime = p.EndTime
			}
			count++
		}
	}
	if count == 0 {
		return model.Schedule{}, &UnresolvableDateError{Path: src.Path, Reason: "schedule has no performances"}
	}
	return s, nil
}

func scheduleDay(src scheduleSource) (time.Time, error) {
	raw := strings.TrimSpace(src.File.Date)
	if raw == "" {
		if d, err := time.Parse(DateLayout, src.Name); err == nil {
			return d, nil
		}
		return time.Time{}, &UnresolvableDateError{
			Path:   src.Path,
			Reason: fmt.Sprintf("no date field and file name %q is not YYYY-MM-DD", src.Name),
		}
	}
	if d, err := time.Parse(DateLayout, raw); err == nil {
		return d, nil
	}
	// Accept any timestamp cast understands; only the calendar day is kept.
	t, err := cast.ToTimeInDefaultLocationE(raw, time.UTC)
	if err != nil {
		return time.Time{}, &UnresolvableDateError{Path: src.Path, Reason: fmt.Sprintf("date %q is not a calendar date", raw)}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func resolveStage(path string, day time.Time, stage string, perfs []performanceFile, loc *time.Location) ([]model.Performance, error) {
	type clock struct{ start, end int }
	clocks := make([]clock, len(perfs))
	boundary := int(DayBoundary / time.Minute)
	late := false
	for i, p := range perfs {
		start, err := parseClock(p.Start)
		if err != nil {
			return nil, convert.WithPath(fmt.Errorf("stage %q set %d start: %w", stage, i+1, err), path)
		}
		end, err := parseClock(p.End)
		if err != nil {
			return nil, convert.WithPath(fmt.Errorf("stage %q set %d end: %w", stage, i+1, err), path)
		}
		clocks[i] = clock{start, end}
		late = late || start >= boundary
	}

	out := make([]model.Performance, 0, len(perfs))
	for i, p := range perfs {
		start, end := clocks[i].start, clocks[i].end
		offset := 0
		if late && start < boundary {
			offset = 1
		}
		endOffset := offset
		if end < start {
			endOffset++
		}

		names := model.NewOrderedSet[string]()
		if a := strings.TrimSpace(p.Artist); a != "" {
			names.Add(a)
		}
		for _, a := range p.Artists {
			if a = strings.TrimSpace(a); a != "" {
				names.Add(a)
			}
		}
		title := strings.TrimSpace(p.Title)
		if title == "" {
			title = strings.Join(names.Items(), " & ")
		}
		if title == "" {
			return nil, convert.WithPath(fmt.Errorf("stage %q set %d has neither title nor artists", stage, i+1), path)
		}

		out = append(out, model.Performance{
			Title:       title,
			Subtitle:    trimmed(p.Subtitle),
			ArtistNames: names,
			StartTime:   at(day, offset, start, loc),
			EndTime:     at(day, endOffset, end, loc),
			StageName:   stage,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// at builds the instant minutes past midnight of day+offset in loc.
func at(day time.Time, offset, minutes int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+offset, minutes/60, minutes%60, 0, 0, loc)
}

// parseClock parses "HH:MM" (24h) or "h:mm AM/PM" into minutes past midnight.
func parseClock(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range []string{"15:04", "3:04PM", "3:04 PM", "15:04:05", "3PM", "3 PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// unresolveSchedule is the inverse of resolveSchedule for a schedule whose
// sets are in chronological order per stage.
func unresolveSchedule(s model.Schedule, loc *time.Location) scheduleSource {
	name := s.Source
	if name == "" {
		name = s.Metadata.Date
	}
	f := scheduleFile{
		Date:        s.Metadata.Date,
		CustomTitle: s.Metadata.CustomTitle,
		Stages:      make(map[string][]performanceFile, len(s.StageSchedules)),
	}
	for stage, perfs := range s.StageSchedules {
		out := make([]performanceFile, 0, len(perfs))
		for _, p := range perfs {
			names := p.ArtistNames.Items()
			pf := performanceFile{
				Subtitle: p.Subtitle,
				Start:    p.StartTime.In(loc).Format(ClockLayout),
				End:      p.EndTime.In(loc).Format(ClockLayout),
			}
			if len(names) == 1 {
				pf.Artist = names[0]
			} else {
				pf.Artists = names
			}
			if p.Title != strings.Join(names, " & ") {
				pf.Title = p.Title
			}
			out = append(out, pf)
		}
		f.Stages[stage] = out
	}
	return scheduleSource{Name: name, File: f}
}
