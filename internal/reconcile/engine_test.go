package reconcile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/lineup/internal/model"
	"github.com/papapumpkin/lineup/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lineup.db")
	s, err := store.Open(context.Background(), store.DriverSQLite, path)
	if err != nil {
		t.Fatalf("store.Open(%q): %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func fixedClock(tm time.Time) func() time.Time {
	return func() time.Time { return tm }
}

var clockStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return time.Date(2024, 6, day, hour, 0, 0, 0, time.UTC)
}

// fixture returns a small festival: two stages, two profiled artists and
// two names referenced without a profile.
func fixture() model.OrganizerConfiguration {
	mapTime := at(1, 9)
	return model.OrganizerConfiguration{
		Info: model.Organizer{ID: "wicked-woods", Name: "Wicked Woods"},
		Events: []model.EventConfiguration{{
			Dir: "2024",
			Info: model.EventInfo{
				Name:         "Wicked Woods 2024",
				TimeZoneName: "UTC",
				Location:     time.UTC,
				StartTime:    at(1, 0),
				EndTime:      at(3, 0),
				ContactNumbers: []model.ContactNumber{
					{PhoneNumber: "911", Title: "Emergency"},
				},
			},
			Artists: []model.Artist{
				{Name: "Cantos", Links: []model.Link{{URL: "https://cantos.example", Type: model.LinkWebsite}}},
				{Name: "Ayla"},
			},
			Stages: []model.Stage{{Name: "Main", Color: "#ff0000"}, {Name: "Forest"}},
			StageLineups: map[string]model.StageLineup{
				"Main": {PosterURL: "https://x/main.png", Artists: model.NewOrderedSet("Cantos", "Mystery Guest")},
			},
			Schedule: []model.Schedule{{
				Source:   "2024-06-01",
				Metadata: model.ScheduleMetadata{Date: "2024-06-01", StartTime: at(1, 20), EndTime: at(2, 1)},
				StageSchedules: map[string][]model.Performance{
					"Main": {{
						Title: "Cantos", ArtistNames: model.NewOrderedSet("Cantos"),
						StartTime: at(1, 20), EndTime: at(1, 22), StageName: "Main",
					}},
					"Forest": {{
						Title: "Friends & Ayla", ArtistNames: model.NewOrderedSet("Friends", "ayla"),
						StartTime: at(1, 23), EndTime: at(2, 1), StageName: "Forest",
					}},
				},
			}},
			Channels: []model.ChannelConfiguration{{
				Info: model.Channel{Name: "General", DefaultNotificationState: model.Subscribed},
				Posts: []model.Post{
					{Title: "Welcome", Contents: "Hello"},
					{Title: "Map", Contents: "See map", Timestamp: &mapTime, IsPinned: true},
				},
			}},
		}},
	}
}

func mustSync(t *testing.T, e *Engine, cfg model.OrganizerConfiguration) *Report {
	t.Helper()
	r, err := e.Sync(context.Background(), cfg, SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return r
}

// snapshot is every stored row under the fixture's organizer.
type snapshot struct {
	Organizer          store.OrganizerRow
	Events             []store.EventRow
	Contacts           []store.ContactNumberRow
	Artists            []store.ArtistRow
	Stages             []store.StageRow
	Lineups            []store.LineupArtistRow
	Schedules          []store.ScheduleRow
	Performances       []store.PerformanceRow
	PerformanceArtists []store.PerformanceArtistRow
	Channels           []store.ChannelRow
	Posts              []store.PostRow
}

func dump(t *testing.T, s *store.Store, orgID string) snapshot {
	t.Helper()
	ctx := context.Background()
	var snap snapshot
	var err error
	check := func(what string) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", what, err)
		}
	}
	snap.Organizer, err = s.Organizer(ctx, orgID)
	check("Organizer")
	snap.Events, err = s.Events(ctx, orgID)
	check("Events")
	for _, ev := range snap.Events {
		rows, err := s.ContactNumbers(ctx, ev.ID)
		if err != nil {
			t.Fatalf("ContactNumbers: %v", err)
		}
		snap.Contacts = append(snap.Contacts, rows...)
		artists, err := s.Artists(ctx, ev.ID)
		if err != nil {
			t.Fatalf("Artists: %v", err)
		}
		snap.Artists = append(snap.Artists, artists...)
		stages, err := s.Stages(ctx, ev.ID)
		if err != nil {
			t.Fatalf("Stages: %v", err)
		}
		snap.Stages = append(snap.Stages, stages...)
		for _, st := range stages {
			l, err := s.LineupArtists(ctx, st.ID)
			if err != nil {
				t.Fatalf("LineupArtists: %v", err)
			}
			snap.Lineups = append(snap.Lineups, l...)
		}
		scheds, err := s.Schedules(ctx, ev.ID)
		if err != nil {
			t.Fatalf("Schedules: %v", err)
		}
		snap.Schedules = append(snap.Schedules, scheds...)
		for _, sc := range scheds {
			perfs, err := s.Performances(ctx, sc.ID)
			if err != nil {
				t.Fatalf("Performances: %v", err)
			}
			snap.Performances = append(snap.Performances, perfs...)
			for _, p := range perfs {
				pa, err := s.PerformanceArtists(ctx, p.ID)
				if err != nil {
					t.Fatalf("PerformanceArtists: %v", err)
				}
				snap.PerformanceArtists = append(snap.PerformanceArtists, pa...)
			}
		}
		chans, err := s.Channels(ctx, ev.ID)
		if err != nil {
			t.Fatalf("Channels: %v", err)
		}
		snap.Channels = append(snap.Channels, chans...)
		for _, ch := range chans {
			posts, err := s.Posts(ctx, ch.ID)
			if err != nil {
				t.Fatalf("Posts: %v", err)
			}
			snap.Posts = append(snap.Posts, posts...)
		}
	}
	return snap
}

func TestSyncCreatesTree(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	e := New(s, WithClock(fixedClock(clockStart)))

	r := mustSync(t, e, fixture())
	if r.Count(ActionDelete) != 0 {
		t.Errorf("first sync deleted %d rows", r.Count(ActionDelete))
	}

	snap := dump(t, s, "wicked-woods")
	if len(snap.Events) != 1 || snap.Events[0].ID != "wicked-woods/wicked-woods-2024" {
		t.Fatalf("Events = %+v", snap.Events)
	}

	var names []string
	placeholders := map[string]bool{}
	for _, a := range snap.Artists {
		names = append(names, a.Name)
		placeholders[a.Name] = a.IsPlaceholder
	}
	if diff := cmp.Diff([]string{"Ayla", "Cantos", "Friends", "Mystery Guest"}, names); diff != "" {
		t.Errorf("artist names mismatch (-want +got):\n%s", diff)
	}
	if placeholders["Cantos"] || !placeholders["Friends"] || !placeholders["Mystery Guest"] {
		t.Errorf("placeholder flags = %v", placeholders)
	}

	if snap.Stages[0].PosterImageURL != "https://x/main.png" {
		t.Errorf("main poster = %q", snap.Stages[0].PosterImageURL)
	}
	wantLineup := []store.LineupArtistRow{
		{StageID: "wicked-woods/wicked-woods-2024/main", ArtistID: "wicked-woods/wicked-woods-2024/cantos", SortIndex: 0},
		{StageID: "wicked-woods/wicked-woods-2024/main", ArtistID: "wicked-woods/wicked-woods-2024/mystery-guest", SortIndex: 1},
	}
	if diff := cmp.Diff(wantLineup, snap.Lineups); diff != "" {
		t.Errorf("lineup mismatch (-want +got):\n%s", diff)
	}

	if len(snap.Performances) != 2 {
		t.Fatalf("got %d performances, want 2", len(snap.Performances))
	}
	forest := "wicked-woods/wicked-woods-2024/2024-06-01/forest/friends-&-ayla"
	var links []store.PerformanceArtistRow
	for _, pa := range snap.PerformanceArtists {
		if pa.PerformanceID == forest {
			links = append(links, pa)
		}
	}
	if len(links) != 2 {
		t.Fatalf("forest links = %+v", links)
	}
	if links[1].ArtistID != "wicked-woods/wicked-woods-2024/ayla" || links[1].AnonymousName == nil || *links[1].AnonymousName != "ayla" {
		t.Errorf("ayla link = %+v, want anonymous name recorded for differing spelling", links[1])
	}
	if links[0].AnonymousName != nil {
		t.Errorf("friends link has anonymous name %q", *links[0].AnonymousName)
	}

	if snap.Channels[0].UserNotificationState != "subscribed" {
		t.Errorf("new channel user state = %q, want default", snap.Channels[0].UserNotificationState)
	}
	for _, p := range snap.Posts {
		if p.Title == "Welcome" && p.Timestamp != "2024-05-01T12:00:00Z" {
			t.Errorf("Welcome timestamp = %q, want clock time", p.Timestamp)
		}
		if p.Title == "Map" && p.Timestamp != "2024-06-01T09:00:00Z" {
			t.Errorf("Map timestamp = %q, want source time", p.Timestamp)
		}
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	first := New(s, WithClock(fixedClock(clockStart)))
	mustSync(t, first, fixture())
	before := dump(t, s, "wicked-woods")

	second := New(s, WithClock(fixedClock(clockStart.Add(48*time.Hour))))
	r := mustSync(t, second, fixture())
	if r.HasChanges() {
		t.Errorf("second sync reported changes: %+v", r.Actions)
	}
	if r.Unchanged == 0 {
		t.Error("second sync counted no unchanged entities")
	}
	if diff := cmp.Diff(before, dump(t, s, "wicked-woods")); diff != "" {
		t.Errorf("store changed on re-sync (-before +after):\n%s", diff)
	}
}

func TestReportByKind(t *testing.T) {
	t.Parallel()
	r := &Report{}
	r.add("stage", "a", ActionCreate)
	r.add("artist", "b", ActionDelete)
	r.add("artist", "c", ActionDelete)
	want := []KindCount{
		{Kind: "artist", Type: ActionDelete, Number: 2},
		{Kind: "stage", Type: ActionCreate, Number: 1},
	}
	if diff := cmp.Diff(want, r.ByKind()); diff != "" {
		t.Errorf("ByKind mismatch (-want +got):\n%s", diff)
	}
}
