package loader

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/papapumpkin/lineup/internal/convert"
	"github.com/papapumpkin/lineup/internal/filetree"
	"github.com/papapumpkin/lineup/internal/model"
)

type eventSource struct {
	Path string
	File eventFile
}

type eventTree = filetree.Tuple5[
	eventSource,
	*lineupFile,
	[]model.Artist,
	[]scheduleSource,
	[]filetree.Named[channelTree],
]

// eventNode describes one event directory.
func eventNode() filetree.Node[eventTree] {
	return filetree.Seq5(
		filetree.Map(filetree.File("event-info", "yml", "yaml"), eventSourceConversion()),
		filetree.Map(
			filetree.OptionalFile("stage-lineups", "yml", "yaml"),
			convert.Optional(filetree.Contents(convert.YAMLFile[lineupFile]())),
		),
		filetree.Map(
			filetree.OptionalDir("artists", filetree.ManyFiles("md")),
			convert.Each(artistConversion()),
		),
		filetree.Map(
			filetree.OptionalDir("schedules", filetree.ManyFiles("yml", "yaml")),
			convert.Each(scheduleSourceConversion()),
		),
		filetree.OptionalDir("communications", filetree.ManyDirs(channelNode())),
	)
}

func eventSourceConversion() convert.Conversion[filetree.Leaf, eventSource] {
	y := convert.YAMLFile[eventFile]()
	return convert.Func(
		func(leaf filetree.Leaf) (eventSource, error) {
			f, err := y.Apply(leaf.Data)
			if err != nil {
				return eventSource{}, convert.WithPath(err, leaf.Path)
			}
			return eventSource{Path: leaf.Path, File: f}, nil
		},
		func(s eventSource) (filetree.Leaf, error) {
			data, err := y.Unapply(s.File)
			return filetree.Leaf{Data: data}, err
		},
	)
}

// eventConversion assembles one event directory. The directory name is the
// fallback event name. An unresolvable time zone falls back to the local zone
// with a warning instead of failing the import.
func eventConversion(logger *slog.Logger) convert.Conversion[filetree.Named[eventTree], model.EventConfiguration] {
	return convert.Func(
		func(n filetree.Named[eventTree]) (model.EventConfiguration, error) {
			return buildEvent(n, logger)
		},
		func(ec model.EventConfiguration) (filetree.Named[eventTree], error) {
			return unbuildEvent(ec), nil
		},
	)
}

func buildEvent(n filetree.Named[eventTree], logger *slog.Logger) (model.EventConfiguration, error) {
	src := n.Value.V1
	f := src.File

	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = n.Name
	}
	loc, ok := ResolveLocation(f.TimeZone)
	if !ok {
		loc = time.Local
		logger.Warn("unresolved event time zone, using local zone",
			"event", name, "time_zone", f.TimeZone, "local", loc.String())
	}

	info := model.EventInfo{
		Name:            name,
		TimeZoneName:    strings.TrimSpace(f.TimeZone),
		Location:        loc,
		ImageURL:        f.ImageURL,
		IconImageURL:    f.IconImageURL,
		SiteMapImageURL: f.SiteMapImageURL,
		Address:         f.Address,
		Latitude:        f.Latitude,
		Longitude:       f.Longitude,
	}
	start, _, err := parseDate(f.StartDate, loc)
	if err != nil {
		return model.EventConfiguration{}, convert.WithPath(convert.Decodef("startDate: %w", err), src.Path)
	}
	end, dateOnly, err := parseDate(f.EndDate, loc)
	if err != nil {
		return model.EventConfiguration{}, convert.WithPath(convert.Decodef("endDate: %w", err), src.Path)
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1)
	}
	info.StartTime, info.EndTime = start, end
	for _, c := range f.ContactNumbers {
		info.ContactNumbers = append(info.ContactNumbers, model.ContactNumber{
			PhoneNumber: strings.TrimSpace(c.PhoneNumber),
			Title:       c.Title,
			Description: c.Description,
		})
	}

	ec := model.EventConfiguration{Dir: n.Name, Info: info, Artists: n.Value.V3}
	for _, s := range f.Stages {
		ec.Stages = append(ec.Stages, model.Stage{
			Name:         strings.TrimSpace(s.Name),
			Color:        s.Color,
			ImageURL:     s.ImageURL,
			IconImageURL: s.IconImageURL,
		})
	}
	if lf := n.Value.V2; lf != nil {
		ec.StageLineups = make(map[string]model.StageLineup, len(*lf))
		for stage, entry := range *lf {
			set := model.NewOrderedSet[string]()
			for _, a := range entry.Artists {
				if a = strings.TrimSpace(a); a != "" {
					set.Add(a)
				}
			}
			ec.StageLineups[strings.TrimSpace(stage)] = model.StageLineup{PosterURL: entry.PosterURL, Artists: set}
		}
	}
	for _, ss := range n.Value.V4 {
		s, err := resolveSchedule(ss, loc)
		if err != nil {
			return model.EventConfiguration{}, err
		}
		ec.Schedule = append(ec.Schedule, s)
	}
	for i, cn := range n.Value.V5 {
		cc, err := buildChannel(i, cn, loc)
		if err != nil {
			return model.EventConfiguration{}, err
		}
		ec.Channels = append(ec.Channels, cc)
	}
	sort.SliceStable(ec.Channels, func(i, j int) bool {
		return ec.Channels[i].Info.SortIndex < ec.Channels[j].Info.SortIndex
	})
	return ec, nil
}

// parseDate coerces an event date. A plain YYYY-MM-DD is midnight in loc and
// reported as date-only; anything else goes through cast, with zone-less
// values read in loc.
func parseDate(v scalar, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return time.Time{}, false, nil
	}
	if d, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return d, true, nil
	}
	t, err = cast.ToTimeInDefaultLocationE(s, loc)
	return t, false, err
}

func unbuildEvent(ec model.EventConfiguration) filetree.Named[eventTree] {
	loc := ec.Info.Location
	if loc == nil {
		loc = time.UTC
	}
	info := ec.Info
	f := eventFile{
		Name:            info.Name,
		TimeZone:        info.TimeZoneName,
		ImageURL:        info.ImageURL,
		IconImageURL:    info.IconImageURL,
		SiteMapImageURL: info.SiteMapImageURL,
		Address:         info.Address,
		Latitude:        info.Latitude,
		Longitude:       info.Longitude,
	}
	if f.TimeZone == "" {
		f.TimeZone = loc.String()
	}
	if !info.StartTime.IsZero() {
		f.StartDate = scalar(formatDate(info.StartTime, loc, false))
	}
	if !info.EndTime.IsZero() {
		f.EndDate = scalar(formatDate(info.EndTime, loc, true))
	}
	for _, c := range info.ContactNumbers {
		f.ContactNumbers = append(f.ContactNumbers, contactFile(c))
	}
	for _, s := range ec.Stages {
		f.Stages = append(f.Stages, stageFile(s))
	}

	var lineups *lineupFile
	if len(ec.StageLineups) > 0 {
		lf := make(lineupFile, len(ec.StageLineups))
		for stage, l := range ec.StageLineups {
			lf[stage] = lineupEntry{PosterURL: l.PosterURL, Artists: l.Artists.Items()}
		}
		lineups = &lf
	}

	var artists []model.Artist
	for _, a := range ec.Artists {
		if !a.Placeholder {
			artists = append(artists, a)
		}
	}

	schedules := make([]scheduleSource, 0, len(ec.Schedule))
	for _, s := range ec.Schedule {
		schedules = append(schedules, unresolveSchedule(s, loc))
	}

	channels := make([]filetree.Named[channelTree], 0, len(ec.Channels))
	for _, cc := range ec.Channels {
		channels = append(channels, unbuildChannel(cc))
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].Name < channels[j].Name })

	dir := ec.Dir
	if dir == "" {
		dir = info.Name
	}
	return filetree.Named[eventTree]{
		Name: dir,
		Value: eventTree{
			V1: eventSource{File: f},
			V2: lineups,
			V3: artists,
			V4: schedules,
			V5: channels,
		},
	}
}

// formatDate writes t as a bare date when it is midnight in loc. An exclusive
// end at midnight is written as the previous, inclusive, day.
func formatDate(t time.Time, loc *time.Location, exclusiveEnd bool) string {
	t = t.In(loc)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		if exclusiveEnd {
			t = t.AddDate(0, 0, -1)
		}
		return t.Format(DateLayout)
	}
	return t.Format(time.RFC3339)
}
