package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/papapumpkin/lineup/internal/model"
	"github.com/papapumpkin/lineup/internal/store"
	"github.com/papapumpkin/lineup/internal/telemetry"
)

func TestRenameIsDeleteAndCreate(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	e := New(s)
	mustSync(t, e, fixture())

	ctx := context.Background()
	oldID := "wicked-woods/wicked-woods-2024/cantos"
	if err := s.SetArtistFavorite(ctx, oldID, true); err != nil {
		t.Fatalf("SetArtistFavorite: %v", err)
	}

	cfg := fixture()
	ev := &cfg.Events[0]
	ev.Artists[0].Name = "Cantos Music"
	ev.StageLineups["Main"] = model.StageLineup{Artists: model.NewOrderedSet("Cantos Music")}
	main := ev.Schedule[0].StageSchedules["Main"]
	main[0].ArtistNames = model.NewOrderedSet("Cantos Music")

	r := mustSync(t, e, cfg)
	var deleted, created bool
	for _, a := range r.Actions {
		if a.Kind == "artist" && a.ID == oldID && a.Type == ActionDelete {
			deleted = true
		}
		if a.Kind == "artist" && a.ID == "wicked-woods/wicked-woods-2024/cantos-music" && a.Type == ActionCreate {
			created = true
		}
	}
	if !deleted || !created {
		t.Errorf("rename actions = %+v, want delete of old and create of new", r.Actions)
	}
	fav, err := s.ArtistFavorite(ctx, oldID)
	if err != nil {
		t.Fatalf("ArtistFavorite: %v", err)
	}
	if fav {
		t.Error("favorite on renamed artist survived")
	}
	fav, err = s.ArtistFavorite(ctx, "wicked-woods/wicked-woods-2024/cantos-music")
	if err != nil {
		t.Fatalf("ArtistFavorite: %v", err)
	}
	if fav {
		t.Error("favorite migrated to the new artist")
	}
}

func TestSyncPreservesChannelSubscription(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	e := New(s)
	mustSync(t, e, fixture())

	ctx := context.Background()
	chID := "wicked-woods/wicked-woods-2024/general"
	if err := s.SetChannelNotificationState(ctx, chID, "unsubscribed"); err != nil {
		t.Fatalf("SetChannelNotificationState: %v", err)
	}

	cfg := fixture()
	cfg.Events[0].Channels[0].Info.Description = "Festival news"
	r := mustSync(t, e, cfg)
	if r.Count(ActionUpdate) != 1 {
		t.Errorf("updates = %+v, want only the channel", r.Actions)
	}

	ch, err := s.Channel(ctx, chID)
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if ch.UserNotificationState != "unsubscribed" {
		t.Errorf("UserNotificationState = %q, want unsubscribed", ch.UserNotificationState)
	}
	if ch.Description != "Festival news" {
		t.Errorf("Description = %q", ch.Description)
	}
}

func TestRemovedEventCascades(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	e := New(s)
	mustSync(t, e, fixture())

	ctx := context.Background()
	if err := s.SetPerformanceSeen(ctx, "wicked-woods/wicked-woods-2024/2024-06-01/main/cantos", true); err != nil {
		t.Fatalf("SetPerformanceSeen: %v", err)
	}

	cfg := fixture()
	cfg.Events = nil
	r := mustSync(t, e, cfg)
	if r.Count(ActionDelete) != 1 {
		t.Errorf("deletes = %d, want the event only", r.Count(ActionDelete))
	}

	counts, err := s.TableCounts(ctx)
	if err != nil {
		t.Fatalf("TableCounts: %v", err)
	}
	for _, c := range counts {
		want := int64(0)
		if c.Table == "organizers" {
			want = 1
		}
		if c.Rows != want {
			t.Errorf("%s: %d rows, want %d", c.Table, c.Rows, want)
		}
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	e := New(s)

	r, err := e.Sync(context.Background(), fixture(), SyncOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !r.DryRun || r.Count(ActionCreate) == 0 {
		t.Errorf("dry-run report = %+v", r)
	}
	if _, err := s.Organizer(context.Background(), "wicked-woods"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("organizer persisted by dry run: err = %v", err)
	}
}

func TestSyncEmitsTelemetry(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sync.jsonl")
	em, err := telemetry.NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	e := New(testStore(t), WithEmitter(em))
	r := mustSync(t, e, fixture())
	cfg := fixture()
	cfg.Info.ID = ""
	if _, err := e.Sync(context.Background(), cfg, SyncOptions{}); err == nil {
		t.Fatal("expected failure for missing organizer id")
	}
	em.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d telemetry lines, want 4:\n%s", len(lines), data)
	}
	for i, kind := range []string{telemetry.KindSyncStart, telemetry.KindSyncDone, telemetry.KindSyncStart, telemetry.KindSyncFailed} {
		if !strings.Contains(lines[i], `"kind":"`+kind+`"`) {
			t.Errorf("line %d = %s, want kind %s", i, lines[i], kind)
		}
	}
	if !strings.Contains(lines[1], r.RunID) {
		t.Errorf("sync_done line %s lacks run id %s", lines[1], r.RunID)
	}
}
