package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Organizer returns the organizer with id.
func (s *Store) Organizer(ctx context.Context, id string) (OrganizerRow, error) {
	var r OrganizerRow
	err := s.db.GetContext(ctx, &r, s.rebind("SELECT * FROM organizers WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("store: organizer %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return r, fmt.Errorf("store: get organizer %q: %w", id, err)
	}
	return r, nil
}

// Events returns the organizer's events ordered by start time.
func (s *Store) Events(ctx context.Context, organizerID string) ([]EventRow, error) {
	var rows []EventRow
	q := s.rebind("SELECT * FROM music_events WHERE organizer_id = ? ORDER BY start_time, id")
	if err := s.db.SelectContext(ctx, &rows, q, organizerID); err != nil {
		return nil, fmt.Errorf("store: list events of %q: %w", organizerID, err)
	}
	return rows, nil
}

// ContactNumbers returns an event's contact numbers in source order.
func (s *Store) ContactNumbers(ctx context.Context, eventID string) ([]ContactNumberRow, error) {
	var rows []ContactNumberRow
	q := s.rebind("SELECT * FROM contact_numbers WHERE event_id = ? ORDER BY sort_index")
	if err := s.db.SelectContext(ctx, &rows, q, eventID); err != nil {
		return nil, fmt.Errorf("store: list contact numbers of %q: %w", eventID, err)
	}
	return rows, nil
}

// Artists returns an event's artists ordered by name.
func (s *Store) Artists(ctx context.Context, eventID string) ([]ArtistRow, error) {
	var rows []ArtistRow
	q := s.rebind("SELECT * FROM artists WHERE event_id = ? ORDER BY name, id")
	if err := s.db.SelectContext(ctx, &rows, q, eventID); err != nil {
		return nil, fmt.Errorf("store: list artists of %q: %w", eventID, err)
	}
	return rows, nil
}

// Stages returns an event's stages in declaration order.
func (s *Store) Stages(ctx context.Context, eventID string) ([]StageRow, error) {
	var rows []StageRow
	q := s.rebind("SELECT * FROM stages WHERE event_id = ? ORDER BY sort_index, id")
	if err := s.db.SelectContext(ctx, &rows, q, eventID); err != nil {
		return nil, fmt.Errorf("store: list stages of %q: %w", eventID, err)
	}
	return rows, nil
}

// LineupArtists returns a stage's billed artists in lineup order.
func (s *Store) LineupArtists(ctx context.Context, stageID string) ([]LineupArtistRow, error) {
	var rows []LineupArtistRow
	q := s.rebind("SELECT * FROM stage_lineup_artists WHERE stage_id = ? ORDER BY sort_index")
	if err := s.db.SelectContext(ctx, &rows, q, stageID); err != nil {
		return nil, fmt.Errorf("store: list lineup of %q: %w", stageID, err)
	}
	return rows, nil
}

// Schedules returns an event's schedules in chronological order.
func (s *Store) Schedules(ctx context.Context, eventID string) ([]ScheduleRow, error) {
	var rows []ScheduleRow
	q := s.rebind("SELECT * FROM schedules WHERE event_id = ? ORDER BY start_time, id")
	if err := s.db.SelectContext(ctx, &rows, q, eventID); err != nil {
		return nil, fmt.Errorf("store: list schedules of %q: %w", eventID, err)
	}
	return rows, nil
}

// Performances returns a schedule's performances in chronological order.
func (s *Store) Performances(ctx context.Context, scheduleID string) ([]PerformanceRow, error) {
	var rows []PerformanceRow
	q := s.rebind("SELECT * FROM performances WHERE schedule_id = ? ORDER BY start_time, id")
	if err := s.db.SelectContext(ctx, &rows, q, scheduleID); err != nil {
		return nil, fmt.Errorf("store: list performances of %q: %w", scheduleID, err)
	}
	return rows, nil
}

// PerformanceArtists returns a performance's artist links in billing order.
func (s *Store) PerformanceArtists(ctx context.Context, performanceID string) ([]PerformanceArtistRow, error) {
	var rows []PerformanceArtistRow
	q := s.rebind("SELECT * FROM performance_artists WHERE performance_id = ? ORDER BY sort_index")
	if err := s.db.SelectContext(ctx, &rows, q, performanceID); err != nil {
		return nil, fmt.Errorf("store: list artists of performance %q: %w", performanceID, err)
	}
	return rows, nil
}

// Channels returns an event's channels ordered by sort index.
func (s *Store) Channels(ctx context.Context, eventID string) ([]ChannelRow, error) {
	var rows []ChannelRow
	q := s.rebind("SELECT * FROM channels WHERE event_id = ? ORDER BY sort_index, id")
	if err := s.db.SelectContext(ctx, &rows, q, eventID); err != nil {
		return nil, fmt.Errorf("store: list channels of %q: %w", eventID, err)
	}
	return rows, nil
}

// Channel returns one channel.
func (s *Store) Channel(ctx context.Context, id string) (ChannelRow, error) {
	var r ChannelRow
	err := s.db.GetContext(ctx, &r, s.rebind("SELECT * FROM channels WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("store: channel %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return r, fmt.Errorf("store: get channel %q: %w", id, err)
	}
	return r, nil
}

// Posts returns a channel's posts, pinned first, newest first.
func (s *Store) Posts(ctx context.Context, channelID string) ([]PostRow, error) {
	var rows []PostRow
	q := s.rebind("SELECT * FROM posts WHERE channel_id = ? ORDER BY is_pinned DESC, timestamp DESC, id")
	if err := s.db.SelectContext(ctx, &rows, q, channelID); err != nil {
		return nil, fmt.Errorf("store: list posts of %q: %w", channelID, err)
	}
	return rows, nil
}

// SetArtistFavorite records whether the user favorited an artist.
func (s *Store) SetArtistFavorite(ctx context.Context, artistID string, favorite bool) error {
	q := s.rebind(`INSERT INTO artist_preferences (artist_id, is_favorite) VALUES (?, ?)
		ON CONFLICT (artist_id) DO UPDATE SET is_favorite = excluded.is_favorite`)
	if _, err := s.db.ExecContext(ctx, q, artistID, favorite); err != nil {
		return fmt.Errorf("store: set favorite %q: %w", artistID, err)
	}
	return nil
}

// ArtistFavorite reports whether an artist is favorited. An artist without a
// preference row is not.
func (s *Store) ArtistFavorite(ctx context.Context, artistID string) (bool, error) {
	var fav bool
	err := s.db.GetContext(ctx, &fav, s.rebind("SELECT is_favorite FROM artist_preferences WHERE artist_id = ?"), artistID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: get favorite %q: %w", artistID, err)
	}
	return fav, nil
}

// SetPerformanceSeen records whether the user marked a performance as seen.
func (s *Store) SetPerformanceSeen(ctx context.Context, performanceID string, seen bool) error {
	q := s.rebind(`INSERT INTO performance_preferences (performance_id, seen) VALUES (?, ?)
		ON CONFLICT (performance_id) DO UPDATE SET seen = excluded.seen`)
	if _, err := s.db.ExecContext(ctx, q, performanceID, seen); err != nil {
		return fmt.Errorf("store: set seen %q: %w", performanceID, err)
	}
	return nil
}

// PerformanceSeen reports whether a performance is marked as seen.
func (s *Store) PerformanceSeen(ctx context.Context, performanceID string) (bool, error) {
	var seen bool
	err := s.db.GetContext(ctx, &seen, s.rebind("SELECT seen FROM performance_preferences WHERE performance_id = ?"), performanceID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: get seen %q: %w", performanceID, err)
	}
	return seen, nil
}

// SetChannelNotificationState sets the user's subscription state for a channel.
func (s *Store) SetChannelNotificationState(ctx context.Context, channelID, state string) error {
	res, err := s.db.ExecContext(ctx, s.rebind("UPDATE channels SET user_notification_state = ? WHERE id = ?"), state, channelID)
	if err != nil {
		return fmt.Errorf("store: set notification state %q: %w", channelID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("store: channel %q: %w", channelID, ErrNotFound)
	}
	return nil
}

// TableCount is the row count of one table.
type TableCount struct {
	Table string
	Rows  int64
}

// Tables lists every table in dependency order.
func Tables() []string {
	return []string{
		"organizers", "music_events", "contact_numbers", "artists", "stages",
		"stage_lineup_artists", "schedules", "performances", "performance_artists",
		"channels", "posts", "artist_preferences", "performance_preferences",
	}
}

// TableCounts returns the row count of every table.
func (s *Store) TableCounts(ctx context.Context) ([]TableCount, error) {
	tables := Tables()
	out := make([]TableCount, 0, len(tables))
	for _, table := range tables {
		var n int64
		if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, fmt.Errorf("store: count %s: %w", table, err)
		}
		out = append(out, TableCount{Table: table, Rows: n})
	}
	return out, nil
}
