package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

// Kind names an entity table and the column pointing at its parent. The
// reconciliation engine walks every level with the same list / delete-absent
// / upsert-present pattern, so those operations are generic over Kind.
type Kind struct {
	Name         string
	Table        string
	ParentColumn string
}

// Entity kinds.
var (
	KindOrganizer   = Kind{Name: "organizer", Table: "organizers"}
	KindEvent       = Kind{Name: "event", Table: "music_events", ParentColumn: "organizer_id"}
	KindArtist      = Kind{Name: "artist", Table: "artists", ParentColumn: "event_id"}
	KindStage       = Kind{Name: "stage", Table: "stages", ParentColumn: "event_id"}
	KindSchedule    = Kind{Name: "schedule", Table: "schedules", ParentColumn: "event_id"}
	KindPerformance = Kind{Name: "performance", Table: "performances", ParentColumn: "schedule_id"}
	KindChannel     = Kind{Name: "channel", Table: "channels", ParentColumn: "event_id"}
	KindPost        = Kind{Name: "post", Table: "posts", ParentColumn: "channel_id"}
)

// ChildIDs returns the IDs of every k row under parentID, sorted.
func (t *Tx) ChildIDs(ctx context.Context, k Kind, parentID string) ([]string, error) {
	var ids []string
	q := t.rebind("SELECT id FROM " + k.Table + " WHERE " + k.ParentColumn + " = ?")
	if err := t.tx.SelectContext(ctx, &ids, q, parentID); err != nil {
		return nil, fmt.Errorf("store: list %s ids under %q: %w", k.Name, parentID, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Exists reports whether a k row with id exists.
func (t *Tx) Exists(ctx context.Context, k Kind, id string) (bool, error) {
	var n int
	q := t.rebind("SELECT COUNT(*) FROM " + k.Table + " WHERE id = ?")
	if err := t.tx.GetContext(ctx, &n, q, id); err != nil {
		return false, fmt.Errorf("store: check %s %q: %w", k.Name, id, err)
	}
	return n > 0, nil
}

// Delete removes the k rows with the given IDs; dependents cascade.
func (t *Tx) Delete(ctx context.Context, k Kind, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM "+k.Table+" WHERE id IN (?)", ids)
	if err != nil {
		return fmt.Errorf("store: build %s delete: %w", k.Name, err)
	}
	if _, err := t.tx.ExecContext(ctx, t.rebind(q), args...); err != nil {
		return fmt.Errorf("store: delete %s %v: %w", k.Name, ids, err)
	}
	return nil
}
