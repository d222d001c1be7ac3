package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Column lists in table order. id is always the conflict target.
var (
	organizerColumns = []string{"id", "name", "source_url", "image_url", "icon_image_url"}
	eventColumns     = []string{
		"id", "organizer_id", "name", "time_zone", "start_time", "end_time", "image_url",
		"icon_image_url", "site_map_image_url", "address", "latitude", "longitude",
	}
	artistColumns      = []string{"id", "event_id", "name", "bio", "image_url", "logo_url", "kind", "links", "is_placeholder"}
	stageColumns       = []string{"id", "event_id", "name", "sort_index", "color", "image_url", "icon_image_url", "poster_image_url"}
	scheduleColumns    = []string{"id", "event_id", "date", "custom_title", "start_time", "end_time"}
	performanceColumns = []string{"id", "schedule_id", "stage_id", "title", "subtitle", "start_time", "end_time"}
	channelColumns     = []string{
		"id", "event_id", "name", "description", "icon_image_url", "header_image_url", "sort_index",
		"default_notification_state", "user_notification_state",
	}
	postColumns = []string{"id", "channel_id", "title", "contents", "header_image_url", "timestamp", "is_pinned"}
)

// upsertSQL builds an INSERT that, on an id conflict, rewrites the update
// columns only if at least one of them differs. An unchanged row is left
// untouched and reports zero rows affected.
func upsertSQL(table string, cols, update []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (:%s) ON CONFLICT (id) DO UPDATE SET ",
		table, strings.Join(cols, ", "), strings.Join(cols, ", :"))
	for i, c := range update {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s = excluded.%s", c, c)
	}
	b.WriteString(" WHERE ")
	for i, c := range update {
		if i > 0 {
			b.WriteString(" OR ")
		}
		fmt.Fprintf(&b, "%s.%s IS DISTINCT FROM excluded.%s", table, c, c)
	}
	return b.String()
}

func without(cols []string, drop ...string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		keep := true
		for _, d := range drop {
			if c == d {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, c)
		}
	}
	return out
}

// upsert writes row and reports whether anything was inserted or changed.
func (t *Tx) upsert(ctx context.Context, k Kind, cols, update []string, id string, row any) (bool, error) {
	q, args, err := sqlx.Named(upsertSQL(k.Table, cols, update), row)
	if err != nil {
		return false, fmt.Errorf("store: bind %s upsert: %w", k.Name, err)
	}
	res, err := t.tx.ExecContext(ctx, t.rebind(q), args...)
	if err != nil {
		return false, fmt.Errorf("store: upsert %s %q: %w", k.Name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: upsert %s %q: %w", k.Name, id, err)
	}
	return n > 0, nil
}

// UpsertOrganizer inserts or updates an organizer.
func (t *Tx) UpsertOrganizer(ctx context.Context, r OrganizerRow) (bool, error) {
	return t.upsert(ctx, KindOrganizer, organizerColumns, without(organizerColumns, "id"), r.ID, r)
}

// UpsertEvent inserts or updates an event.
func (t *Tx) UpsertEvent(ctx context.Context, r EventRow) (bool, error) {
	return t.upsert(ctx, KindEvent, eventColumns, without(eventColumns, "id"), r.ID, r)
}

// UpsertArtist inserts or updates an artist.
func (t *Tx) UpsertArtist(ctx context.Context, r ArtistRow) (bool, error) {
	return t.upsert(ctx, KindArtist, artistColumns, without(artistColumns, "id"), r.ID, r)
}

// UpsertStage inserts or updates a stage.
func (t *Tx) UpsertStage(ctx context.Context, r StageRow) (bool, error) {
	return t.upsert(ctx, KindStage, stageColumns, without(stageColumns, "id"), r.ID, r)
}

// UpsertSchedule inserts or updates a schedule.
func (t *Tx) UpsertSchedule(ctx context.Context, r ScheduleRow) (bool, error) {
	return t.upsert(ctx, KindSchedule, scheduleColumns, without(scheduleColumns, "id"), r.ID, r)
}

// UpsertPerformance inserts or updates a performance.
func (t *Tx) UpsertPerformance(ctx context.Context, r PerformanceRow) (bool, error) {
	return t.upsert(ctx, KindPerformance, performanceColumns, without(performanceColumns, "id"), r.ID, r)
}

// UpsertChannel inserts or updates a channel. A new row takes
// r.UserNotificationState; an existing row keeps its stored user state.
func (t *Tx) UpsertChannel(ctx context.Context, r ChannelRow) (bool, error) {
	return t.upsert(ctx, KindChannel, channelColumns, without(channelColumns, "id", "user_notification_state"), r.ID, r)
}

// UpsertPost inserts or updates a post.
func (t *Tx) UpsertPost(ctx context.Context, r PostRow) (bool, error) {
	return t.upsert(ctx, KindPost, postColumns, without(postColumns, "id"), r.ID, r)
}

// PostTimestamps returns the stored timestamp of every post in a channel.
func (t *Tx) PostTimestamps(ctx context.Context, channelID string) (map[string]string, error) {
	var rows []struct {
		ID        string `db:"id"`
		Timestamp string `db:"timestamp"`
	}
	q := t.rebind("SELECT id, timestamp FROM posts WHERE channel_id = ?")
	if err := t.tx.SelectContext(ctx, &rows, q, channelID); err != nil {
		return nil, fmt.Errorf("store: list post timestamps for %q: %w", channelID, err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Timestamp
	}
	return out, nil
}

// ReplaceContactNumbers makes rows the event's contact numbers, writing only
// if they differ from what is stored. It reports whether it wrote.
func (t *Tx) ReplaceContactNumbers(ctx context.Context, eventID string, rows []ContactNumberRow) (bool, error) {
	var existing []ContactNumberRow
	q := t.rebind("SELECT event_id, sort_index, phone_number, title, description FROM contact_numbers WHERE event_id = ? ORDER BY sort_index")
	if err := t.tx.SelectContext(ctx, &existing, q, eventID); err != nil {
		return false, fmt.Errorf("store: list contact numbers for %q: %w", eventID, err)
	}
	if equalRows(existing, rows, func(a, b ContactNumberRow) bool { return a == b }) {
		return false, nil
	}
	return true, t.replace(ctx, "contact_numbers", "event_id", eventID,
		[]string{"event_id", "sort_index", "phone_number", "title", "description"}, toAny(rows))
}

// ReplaceLineupArtists makes rows the stage's billed artists.
func (t *Tx) ReplaceLineupArtists(ctx context.Context, stageID string, rows []LineupArtistRow) (bool, error) {
	var existing []LineupArtistRow
	q := t.rebind("SELECT stage_id, artist_id, sort_index FROM stage_lineup_artists WHERE stage_id = ? ORDER BY sort_index")
	if err := t.tx.SelectContext(ctx, &existing, q, stageID); err != nil {
		return false, fmt.Errorf("store: list lineup for %q: %w", stageID, err)
	}
	if equalRows(existing, rows, func(a, b LineupArtistRow) bool { return a == b }) {
		return false, nil
	}
	return true, t.replace(ctx, "stage_lineup_artists", "stage_id", stageID,
		[]string{"stage_id", "artist_id", "sort_index"}, toAny(rows))
}

// ReplacePerformanceArtists makes rows the performance's artist links.
func (t *Tx) ReplacePerformanceArtists(ctx context.Context, performanceID string, rows []PerformanceArtistRow) (bool, error) {
	var existing []PerformanceArtistRow
	q := t.rebind("SELECT performance_id, artist_id, anonymous_name, sort_index FROM performance_artists WHERE performance_id = ? ORDER BY sort_index")
	if err := t.tx.SelectContext(ctx, &existing, q, performanceID); err != nil {
		return false, fmt.Errorf("store: list artists of performance %q: %w", performanceID, err)
	}
	if equalRows(existing, rows, equalPerformanceArtist) {
		return false, nil
	}
	return true, t.replace(ctx, "performance_artists", "performance_id", performanceID,
		[]string{"performance_id", "artist_id", "anonymous_name", "sort_index"}, toAny(rows))
}

func equalPerformanceArtist(a, b PerformanceArtistRow) bool {
	if a.PerformanceID != b.PerformanceID || a.ArtistID != b.ArtistID || a.SortIndex != b.SortIndex {
		return false
	}
	if (a.AnonymousName == nil) != (b.AnonymousName == nil) {
		return false
	}
	return a.AnonymousName == nil || *a.AnonymousName == *b.AnonymousName
}

func equalRows[T any](a, b []T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

func toAny[T any](rows []T) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

// replace deletes every row of table under parent and inserts rows.
func (t *Tx) replace(ctx context.Context, table, parentColumn, parentID string, cols []string, rows []any) error {
	del := t.rebind("DELETE FROM " + table + " WHERE " + parentColumn + " = ?")
	if _, err := t.tx.ExecContext(ctx, del, parentID); err != nil {
		return fmt.Errorf("store: clear %s for %q: %w", table, parentID, err)
	}
	ins := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)", table, strings.Join(cols, ", "), strings.Join(cols, ", :"))
	for _, r := range rows {
		q, args, err := sqlx.Named(ins, r)
		if err != nil {
			return fmt.Errorf("store: bind %s insert: %w", table, err)
		}
		if _, err := t.tx.ExecContext(ctx, t.rebind(q), args...); err != nil {
			return fmt.Errorf("store: insert %s for %q: %w", table, parentID, err)
		}
	}
	return nil
}
