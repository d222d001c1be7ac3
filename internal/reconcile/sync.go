package reconcile

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/papapumpkin/lineup/internal/ident"
	"github.com/papapumpkin/lineup/internal/model"
	"github.com/papapumpkin/lineup/internal/store"
)

// syncer carries the state of one sync transaction.
type syncer struct {
	tx     *store.Tx
	report *Report
	now    time.Time
}

// artistRef is a stored artist as seen by stage lineups and performances.
type artistRef struct {
	id   model.ArtistID
	name string
}

func (s *syncer) fail(k store.Kind, id, op string, err error) error {
	return &ReconciliationError{Kind: k.Name, ID: id, Op: op, Err: err}
}

// record classifies an upsert as a create, an update or a no-op.
func (s *syncer) record(k store.Kind, id string, existed, changed bool) {
	switch {
	case !existed:
		s.report.add(k.Name, id, ActionCreate)
	case changed:
		s.report.add(k.Name, id, ActionUpdate)
	default:
		s.report.Unchanged++
	}
}

// prune deletes the k children of parentID whose IDs are not in desired and
// returns the set of IDs that were stored before the sync.
func (s *syncer) prune(ctx context.Context, k store.Kind, parentID string, desired []string) (map[string]bool, error) {
	want := make(map[string]bool, len(desired))
	for _, id := range desired {
		if want[id] {
			return nil, s.fail(k, id, "plan", ErrDuplicateID)
		}
		want[id] = true
	}

	stored, err := s.tx.ChildIDs(ctx, k, parentID)
	if err != nil {
		return nil, s.fail(k, "", "list", err)
	}
	existing := make(map[string]bool, len(stored))
	var gone []string
	for _, id := range stored {
		existing[id] = true
		if !want[id] {
			gone = append(gone, id)
		}
	}
	if err := s.tx.Delete(ctx, k, gone); err != nil {
		return nil, s.fail(k, "", "delete", err)
	}
	for _, id := range gone {
		s.report.add(k.Name, id, ActionDelete)
	}
	return existing, nil
}

func (s *syncer) organizer(ctx context.Context, cfg model.OrganizerConfiguration) error {
	org := cfg.Info
	if org.ID.IsZero() {
		return s.fail(store.KindOrganizer, "", "plan", ErrNoOrganizerID)
	}
	id := org.ID.String()
	existed, err := s.tx.Exists(ctx, store.KindOrganizer, id)
	if err != nil {
		return s.fail(store.KindOrganizer, id, "lookup", err)
	}
	changed, err := s.tx.UpsertOrganizer(ctx, store.OrganizerRow{
		ID:           id,
		Name:         org.Name,
		SourceURL:    org.SourceURL,
		ImageURL:     org.ImageURL,
		IconImageURL: org.IconImageURL,
	})
	if err != nil {
		return s.fail(store.KindOrganizer, id, "upsert", err)
	}
	s.record(store.KindOrganizer, id, existed, changed)

	ids := make([]string, len(cfg.Events))
	for i, ev := range cfg.Events {
		ids[i] = ident.Derive[model.EventTag](org.ID, ev.Info.Name).String()
	}
	existing, err := s.prune(ctx, store.KindEvent, id, ids)
	if err != nil {
		return err
	}
	for i, ev := range cfg.Events {
		if err := s.event(ctx, org.ID, model.EventID(ids[i]), existing[ids[i]], ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *syncer) event(ctx context.Context, orgID model.OrganizerID, id model.EventID, existed bool, ev model.EventConfiguration) error {
	info := ev.Info
	changed, err := s.tx.UpsertEvent(ctx, store.EventRow{
		ID:              id.String(),
		OrganizerID:     orgID.String(),
		Name:            info.Name,
		TimeZone:        info.TimeZoneName,
		StartTime:       store.FormatTime(info.StartTime),
		EndTime:         store.FormatTime(info.EndTime),
		ImageURL:        info.ImageURL,
		IconImageURL:    info.IconImageURL,
		SiteMapImageURL: info.SiteMapImageURL,
		Address:         info.Address,
		Latitude:        info.Latitude,
		Longitude:       info.Longitude,
	})
	if err != nil {
		return s.fail(store.KindEvent, id.String(), "upsert", err)
	}
	s.record(store.KindEvent, id.String(), existed, changed)

	numbers := make([]store.ContactNumberRow, len(info.ContactNumbers))
	for i, c := range info.ContactNumbers {
		numbers[i] = store.ContactNumberRow{
			EventID:     id.String(),
			SortIndex:   i,
			PhoneNumber: c.PhoneNumber,
			Title:       c.Title,
			Description: c.Description,
		}
	}
	replaced, err := s.tx.ReplaceContactNumbers(ctx, id.String(), numbers)
	if err != nil {
		return s.fail(store.KindEvent, id.String(), "link", err)
	}
	if replaced {
		s.report.add("contact_numbers", id.String(), ActionUpdate)
	}

	artists, err := s.artists(ctx, id, ev)
	if err != nil {
		return err
	}
	stages, err := s.stages(ctx, id, ev, artists)
	if err != nil {
		return err
	}
	if err := s.schedules(ctx, id, ev, stages, artists); err != nil {
		return err
	}
	return s.channels(ctx, id, ev)
}

// referencedNames returns every artist name a lineup or performance uses, in
// a deterministic order.
func referencedNames(ev model.EventConfiguration) []string {
	names := model.NewOrderedSet[string]()
	lineups := make([]string, 0, len(ev.StageLineups))
	for stage := range ev.StageLineups {
		lineups = append(lineups, stage)
	}
	sort.Strings(lineups)
	for _, stage := range lineups {
		for _, n := range ev.StageLineups[stage].Artists.Items() {
			names.Add(n)
		}
	}
	for _, sched := range ev.Schedule {
		for _, stage := range sortedKeys(sched.StageSchedules) {
			for _, p := range sched.StageSchedules[stage] {
				for _, n := range p.ArtistNames.Items() {
					names.Add(n)
				}
			}
		}
	}
	return names.Items()
}

// artists syncs explicit profiles plus a placeholder for every referenced
// name without one. The result maps ident.Key(name) to the stored artist.
func (s *syncer) artists(ctx context.Context, eventID model.EventID, ev model.EventConfiguration) (map[string]artistRef, error) {
	all := make([]model.Artist, 0, len(ev.Artists))
	known := make(map[string]bool, len(ev.Artists))
	for _, a := range ev.Artists {
		all = append(all, a)
		known[ident.Key(a.Name)] = true
	}
	for _, n := range referencedNames(ev) {
		if k := ident.Key(n); !known[k] {
			known[k] = true
			all = append(all, model.Artist{Name: n, Placeholder: true})
		}
	}

	ids := make([]string, len(all))
	for i, a := range all {
		ids[i] = ident.Derive[model.ArtistTag](eventID, a.Name).String()
	}
	existing, err := s.prune(ctx, store.KindArtist, eventID.String(), ids)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]artistRef, len(all))
	for i, a := range all {
		links := "[]"
		if len(a.Links) > 0 {
			b, err := json.Marshal(a.Links)
			if err != nil {
				return nil, s.fail(store.KindArtist, ids[i], "encode", err)
			}
			links = string(b)
		}
		changed, err := s.tx.UpsertArtist(ctx, store.ArtistRow{
			ID:            ids[i],
			EventID:       eventID.String(),
			Name:          a.Name,
			Bio:           a.Bio,
			ImageURL:      a.ImageURL,
			LogoURL:       a.LogoURL,
			Kind:          a.Kind,
			Links:         links,
			IsPlaceholder: a.Placeholder,
		})
		if err != nil {
			return nil, s.fail(store.KindArtist, ids[i], "upsert", err)
		}
		s.record(store.KindArtist, ids[i], existing[ids[i]], changed)
		refs[ident.Key(a.Name)] = artistRef{id: model.ArtistID(ids[i]), name: a.Name}
	}
	return refs, nil
}

// stages syncs declared stages and their lineups. The result maps
// ident.Key(stage name) to the stage ID.
func (s *syncer) stages(ctx context.Context, eventID model.EventID, ev model.EventConfiguration, artists map[string]artistRef) (map[string]model.StageID, error) {
	ids := make([]string, len(ev.Stages))
	byKey := make(map[string]model.StageID, len(ev.Stages))
	for i, st := range ev.Stages {
		id := ident.Derive[model.StageTag](eventID, st.Name)
		ids[i] = id.String()
		byKey[ident.Key(st.Name)] = id
	}
	existing, err := s.prune(ctx, store.KindStage, eventID.String(), ids)
	if err != nil {
		return nil, err
	}

	lineups := make(map[string]model.StageLineup, len(ev.StageLineups))
	for name, l := range ev.StageLineups {
		k := ident.Key(name)
		if _, ok := byKey[k]; !ok {
			return nil, s.fail(store.KindStage, name, "link", ErrUnknownStage)
		}
		lineups[k] = l
	}

	for i, st := range ev.Stages {
		lineup := lineups[ident.Key(st.Name)]
		changed, err := s.tx.UpsertStage(ctx, store.StageRow{
			ID:             ids[i],
			EventID:        eventID.String(),
			Name:           st.Name,
			SortIndex:      i,
			Color:          st.Color,
			ImageURL:       st.ImageURL,
			IconImageURL:   st.IconImageURL,
			PosterImageURL: lineup.PosterURL,
		})
		if err != nil {
			return nil, s.fail(store.KindStage, ids[i], "upsert", err)
		}
		s.record(store.KindStage, ids[i], existing[ids[i]], changed)

		var rows []store.LineupArtistRow
		seen := make(map[model.ArtistID]bool)
		for _, n := range lineup.Artists.Items() {
			ref := artists[ident.Key(n)]
			if seen[ref.id] {
				continue
			}
			seen[ref.id] = true
			rows = append(rows, store.LineupArtistRow{StageID: ids[i], ArtistID: ref.id.String(), SortIndex: len(rows)})
		}
		replaced, err := s.tx.ReplaceLineupArtists(ctx, ids[i], rows)
		if err != nil {
			return nil, s.fail(store.KindStage, ids[i], "link", err)
		}
		if replaced {
			s.report.add("stage_lineup", ids[i], ActionUpdate)
		}
	}
	return byKey, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
