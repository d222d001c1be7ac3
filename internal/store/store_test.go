package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// testStore opens a migrated SQLite store in a temp dir and registers cleanup.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lineup.db")
	s, err := Open(context.Background(), DriverSQLite, path)
	if err != nil {
		t.Fatalf("Open(%q): %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seed writes one organizer, event, stage, artist, schedule and performance.
func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	err := s.WithTx(ctx, func(tx *Tx) error {
		steps := []func() (bool, error){
			func() (bool, error) { return tx.UpsertOrganizer(ctx, OrganizerRow{ID: "org", Name: "Org"}) },
			func() (bool, error) {
				return tx.UpsertEvent(ctx, EventRow{ID: "org/ww", OrganizerID: "org", Name: "WW", TimeZone: "UTC"})
			},
			func() (bool, error) {
				return tx.UpsertStage(ctx, StageRow{ID: "org/ww/main", EventID: "org/ww", Name: "Main"})
			},
			func() (bool, error) {
				return tx.UpsertArtist(ctx, ArtistRow{ID: "org/ww/cantos", EventID: "org/ww", Name: "Cantos", Links: "[]"})
			},
			func() (bool, error) {
				return tx.UpsertSchedule(ctx, ScheduleRow{
					ID: "org/ww/2024-06-01", EventID: "org/ww", Date: "2024-06-01",
					StartTime: "2024-06-01T20:00:00Z", EndTime: "2024-06-01T22:00:00Z",
				})
			},
			func() (bool, error) {
				return tx.UpsertPerformance(ctx, PerformanceRow{
					ID: "org/ww/2024-06-01/main/cantos", ScheduleID: "org/ww/2024-06-01", StageID: "org/ww/main",
					Title: "Cantos", StartTime: "2024-06-01T20:00:00Z", EndTime: "2024-06-01T22:00:00Z",
				})
			},
			func() (bool, error) {
				return tx.ReplacePerformanceArtists(ctx, "org/ww/2024-06-01/main/cantos",
					[]PerformanceArtistRow{{PerformanceID: "org/ww/2024-06-01/main/cantos", ArtistID: "org/ww/cantos"}})
			},
		}
		for _, step := range steps {
			if _, err := step(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("migrates once and reopens", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "lineup.db")
		ctx := context.Background()
		for i := range 2 {
			s, err := Open(ctx, DriverSQLite, path)
			if err != nil {
				t.Fatalf("Open #%d: %v", i+1, err)
			}
			counts, err := s.TableCounts(ctx)
			if err != nil {
				t.Fatalf("TableCounts: %v", err)
			}
			if len(counts) != len(Tables()) {
				t.Errorf("TableCounts returned %d tables, want %d", len(counts), len(Tables()))
			}
			s.Close()
		}
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Parallel()
		_, err := Open(context.Background(), "oracle", "x")
		if !errors.Is(err, ErrUnknownDriver) {
			t.Fatalf("err = %v, want ErrUnknownDriver", err)
		}
	})
}

func TestUpsertReportsChanges(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	upsert := func(r OrganizerRow) bool {
		t.Helper()
		var changed bool
		err := s.WithTx(ctx, func(tx *Tx) error {
			var err error
			changed, err = tx.UpsertOrganizer(ctx, r)
			return err
		})
		if err != nil {
			t.Fatalf("UpsertOrganizer: %v", err)
		}
		return changed
	}

	row := OrganizerRow{ID: "org", Name: "Org"}
	if !upsert(row) {
		t.Error("insert reported unchanged")
	}
	if upsert(row) {
		t.Error("identical upsert reported a change")
	}
	row.Name = "Renamed Org"
	if !upsert(row) {
		t.Error("update reported unchanged")
	}

	got, err := s.Organizer(ctx, "org")
	if err != nil {
		t.Fatalf("Organizer: %v", err)
	}
	if got.Name != "Renamed Org" {
		t.Errorf("Name = %q, want %q", got.Name, "Renamed Org")
	}
	if _, err := s.Organizer(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Organizer(missing) err = %v, want ErrNotFound", err)
	}
}

func TestUpsertChannelKeepsUserState(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	ch := ChannelRow{
		ID: "org/ww/general", EventID: "org/ww", Name: "General",
		DefaultNotificationState: "subscribed", UserNotificationState: "subscribed",
	}
	write := func(r ChannelRow) {
		t.Helper()
		err := s.WithTx(ctx, func(tx *Tx) error {
			_, err := tx.UpsertChannel(ctx, r)
			return err
		})
		if err != nil {
			t.Fatalf("UpsertChannel: %v", err)
		}
	}
	write(ch)

	if err := s.SetChannelNotificationState(ctx, ch.ID, "unsubscribed"); err != nil {
		t.Fatalf("SetChannelNotificationState: %v", err)
	}
	ch.Description = "news"
	write(ch)

	got, err := s.Channel(ctx, ch.ID)
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if got.UserNotificationState != "unsubscribed" {
		t.Errorf("UserNotificationState = %q, want unsubscribed", got.UserNotificationState)
	}
	if got.Description != "news" {
		t.Errorf("Description = %q, want news", got.Description)
	}
	if err := s.SetChannelNotificationState(ctx, "nope", "subscribed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetChannelNotificationState(nope) err = %v, want ErrNotFound", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	if err := s.SetArtistFavorite(ctx, "org/ww/cantos", true); err != nil {
		t.Fatalf("SetArtistFavorite: %v", err)
	}
	if err := s.SetPerformanceSeen(ctx, "org/ww/2024-06-01/main/cantos", true); err != nil {
		t.Fatalf("SetPerformanceSeen: %v", err)
	}

	err := s.WithTx(ctx, func(tx *Tx) error {
		return tx.Delete(ctx, KindEvent, []string{"org/ww"})
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
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
			t.Errorf("%s has %d rows after cascade, want %d", c.Table, c.Rows, want)
		}
	}
	fav, err := s.ArtistFavorite(ctx, "org/ww/cantos")
	if err != nil {
		t.Fatalf("ArtistFavorite: %v", err)
	}
	if fav {
		t.Error("favorite survived artist deletion")
	}
}

func TestChildIDsAndExists(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Tx) error {
		ids, err := tx.ChildIDs(ctx, KindPerformance, "org/ww/2024-06-01")
		if err != nil {
			return err
		}
		if diff := cmp.Diff([]string{"org/ww/2024-06-01/main/cantos"}, ids); diff != "" {
			t.Errorf("ChildIDs mismatch (-want +got):\n%s", diff)
		}
		ok, err := tx.Exists(ctx, KindOrganizer, "org")
		if err != nil {
			return err
		}
		if !ok {
			t.Error("Exists(org) = false")
		}
		ok, err = tx.Exists(ctx, KindOrganizer, "other")
		if err != nil {
			return err
		}
		if ok {
			t.Error("Exists(other) = true")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestReplaceWritesOnlyDifferences(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	numbers := []ContactNumberRow{
		{EventID: "org/ww", SortIndex: 0, PhoneNumber: "911", Title: "Emergency"},
		{EventID: "org/ww", SortIndex: 1, PhoneNumber: "555-0100", Title: "Info"},
	}
	replace := func(rows []ContactNumberRow) bool {
		t.Helper()
		var changed bool
		err := s.WithTx(ctx, func(tx *Tx) error {
			var err error
			changed, err = tx.ReplaceContactNumbers(ctx, "org/ww", rows)
			return err
		})
		if err != nil {
			t.Fatalf("ReplaceContactNumbers: %v", err)
		}
		return changed
	}

	if !replace(numbers) {
		t.Error("first replace reported unchanged")
	}
	if replace(numbers) {
		t.Error("identical replace reported a change")
	}
	if !replace(numbers[:1]) {
		t.Error("shrinking replace reported unchanged")
	}
	got, err := s.ContactNumbers(ctx, "org/ww")
	if err != nil {
		t.Fatalf("ContactNumbers: %v", err)
	}
	if diff := cmp.Diff(numbers[:1], got); diff != "" {
		t.Errorf("ContactNumbers mismatch (-want +got):\n%s", diff)
	}

	anon := "CANTOS"
	err = s.WithTx(ctx, func(tx *Tx) error {
		changed, err := tx.ReplacePerformanceArtists(ctx, "org/ww/2024-06-01/main/cantos", []PerformanceArtistRow{
			{PerformanceID: "org/ww/2024-06-01/main/cantos", ArtistID: "org/ww/cantos", AnonymousName: &anon},
		})
		if err != nil {
			return err
		}
		if !changed {
			t.Error("adding an anonymous name reported unchanged")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ReplacePerformanceArtists: %v", err)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.UpsertOrganizer(ctx, OrganizerRow{ID: "org"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx err = %v, want boom", err)
	}
	if _, err := s.Organizer(ctx, "org"); !errors.Is(err, ErrNotFound) {
		t.Errorf("organizer persisted after rollback: err = %v", err)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("PDT", -7*3600)
	in := time.Date(2024, 6, 1, 23, 0, 0, 0, loc)
	s := FormatTime(in)
	if s != "2024-06-02T06:00:00Z" {
		t.Errorf("FormatTime = %q", s)
	}
	out, err := ParseTime(s)
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("ParseTime = %v, want %v", out, in)
	}
	if FormatTime(time.Time{}) != "" {
		t.Error("zero time should format as empty")
	}
	if z, err := ParseTime(""); err != nil || !z.IsZero() {
		t.Errorf("ParseTime(\"\") = %v, %v", z, err)
	}
}
