package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/lineup/internal/model"
)

func TestFailedSyncLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	e := New(s)
	mustSync(t, e, fixture())
	before := dump(t, s, "wicked-woods")

	cfg := fixture()
	ev := &cfg.Events[0]
	ev.Artists = append(ev.Artists, model.Artist{Name: "Newcomer"})
	ev.Schedule[0].StageSchedules["Nowhere"] = []model.Performance{{
		Title: "Ghost", StartTime: at(1, 20), EndTime: at(1, 21),
	}}

	_, err := e.Sync(context.Background(), cfg, SyncOptions{})
	if !errors.Is(err, ErrReconcile) {
		t.Fatalf("err = %v, want ErrReconcile", err)
	}
	if !errors.Is(err, ErrUnknownStage) {
		t.Errorf("err = %v, want ErrUnknownStage", err)
	}
	var rerr *ReconciliationError
	if !errors.As(err, &rerr) || rerr.Kind != "performance" {
		t.Errorf("err = %#v, want performance ReconciliationError", err)
	}
	if diff := cmp.Diff(before, dump(t, s, "wicked-woods")); diff != "" {
		t.Errorf("failed sync changed the store (-before +after):\n%s", diff)
	}
}

func TestSyncRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*model.OrganizerConfiguration)
		want   error
	}{
		{
			name: "duplicate artist identity",
			mutate: func(c *model.OrganizerConfiguration) {
				c.Events[0].Artists = append(c.Events[0].Artists, model.Artist{Name: "cantos "})
			},
			want: ErrDuplicateID,
		},
		{
			name: "duplicate event name",
			mutate: func(c *model.OrganizerConfiguration) {
				c.Events = append(c.Events, c.Events[0])
			},
			want: ErrDuplicateID,
		},
		{
			name: "lineup for undeclared stage",
			mutate: func(c *model.OrganizerConfiguration) {
				c.Events[0].StageLineups["Tent"] = model.StageLineup{}
			},
			want: ErrUnknownStage,
		},
		{
			name: "missing organizer id",
			mutate: func(c *model.OrganizerConfiguration) {
				c.Info.ID = ""
			},
			want: ErrNoOrganizerID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := New(testStore(t))
			cfg := fixture()
			tt.mutate(&cfg)
			_, err := e.Sync(context.Background(), cfg, SyncOptions{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrReconcile) {
				t.Errorf("err = %v does not match ErrReconcile", err)
			}
		})
	}
}

func TestPostTimestampKeptAcrossSyncs(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	mustSync(t, New(s, WithClock(fixedClock(clockStart))), fixture())

	cfg := fixture()
	cfg.Events[0].Channels[0].Posts[0].Contents = "Hello again"
	cfg.Events[0].Channels[0].Posts = append(cfg.Events[0].Channels[0].Posts, model.Post{Title: "Late news"})
	mustSync(t, New(s, WithClock(fixedClock(clockStart.Add(time.Hour)))), cfg)

	posts, err := s.Posts(context.Background(), "wicked-woods/wicked-woods-2024/general")
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	got := map[string]string{}
	for _, p := range posts {
		got[p.Title] = p.Timestamp
	}
	want := map[string]string{
		"Welcome":   "2024-05-01T12:00:00Z",
		"Map":       "2024-06-01T09:00:00Z",
		"Late news": "2024-05-01T13:00:00Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("post timestamps mismatch (-want +got):\n%s", diff)
	}
}

func TestRepeatedPerformanceTitles(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	cfg := fixture()
	main := cfg.Events[0].Schedule[0].StageSchedules["Main"]
	main = append(main, model.Performance{
		Title: "Cantos", ArtistNames: model.NewOrderedSet("Cantos"),
		StartTime: at(1, 23), EndTime: at(2, 0), StageName: "Main",
	})
	cfg.Events[0].Schedule[0].StageSchedules["Main"] = main
	mustSync(t, New(s), cfg)

	perfs, err := s.Performances(context.Background(), "wicked-woods/wicked-woods-2024/2024-06-01")
	if err != nil {
		t.Fatalf("Performances: %v", err)
	}
	var ids []string
	for _, p := range perfs {
		if p.Title == "Cantos" {
			ids = append(ids, p.ID)
		}
	}
	want := []string{
		"wicked-woods/wicked-woods-2024/2024-06-01/main/cantos",
		"wicked-woods/wicked-woods-2024/2024-06-01/main/cantos#2",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("performance ids mismatch (-want +got):\n%s", diff)
	}
}
