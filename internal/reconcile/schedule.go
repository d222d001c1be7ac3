package reconcile

import (
	"context"
	"fmt"

	"github.com/papapumpkin/lineup/internal/ident"
	"github.com/papapumpkin/lineup/internal/model"
	"github.com/papapumpkin/lineup/internal/store"
)

// ScheduleID returns the stable ID of a schedule within an event.
func ScheduleID(eventID model.EventID, md model.ScheduleMetadata) model.ScheduleID {
	if md.CustomTitle != "" {
		return ident.Derive[model.ScheduleTag](eventID, md.Date, md.CustomTitle)
	}
	return ident.Derive[model.ScheduleTag](eventID, md.Date)
}

func (s *syncer) schedules(ctx context.Context, eventID model.EventID, ev model.EventConfiguration, stages map[string]model.StageID, artists map[string]artistRef) error {
	ids := make([]string, len(ev.Schedule))
	for i, sc := range ev.Schedule {
		ids[i] = ScheduleID(eventID, sc.Metadata).String()
	}
	existing, err := s.prune(ctx, store.KindSchedule, eventID.String(), ids)
	if err != nil {
		return err
	}
	for i, sc := range ev.Schedule {
		md := sc.Metadata
		changed, err := s.tx.UpsertSchedule(ctx, store.ScheduleRow{
			ID:          ids[i],
			EventID:     eventID.String(),
			Date:        md.Date,
			CustomTitle: md.CustomTitle,
			StartTime:   store.FormatTime(md.StartTime),
			EndTime:     store.FormatTime(md.EndTime),
		})
		if err != nil {
			return s.fail(store.KindSchedule, ids[i], "upsert", err)
		}
		s.record(store.KindSchedule, ids[i], existing[ids[i]], changed)
		if err := s.performances(ctx, model.ScheduleID(ids[i]), sc, stages, artists); err != nil {
			return err
		}
	}
	return nil
}

type plannedPerformance struct {
	id    string
	stage model.StageID
	perf  model.Performance
}

func (s *syncer) performances(ctx context.Context, scheduleID model.ScheduleID, sc model.Schedule, stages map[string]model.StageID, artists map[string]artistRef) error {
	var planned []plannedPerformance
	repeats := make(map[string]int)
	for _, stageName := range sortedKeys(sc.StageSchedules) {
		stageID, ok := stages[ident.Key(stageName)]
		if !ok {
			return s.fail(store.KindPerformance, stageName, "link", fmt.Errorf("%w: %q in schedule %q", ErrUnknownStage, stageName, sc.Source))
		}
		for _, p := range sc.StageSchedules[stageName] {
			base := ident.Derive[model.PerformanceTag](scheduleID, stageName, p.Title).String()
			repeats[base]++
			id := base
			if n := repeats[base]; n > 1 {
				id = fmt.Sprintf("%s#%d", base, n)
			}
			planned = append(planned, plannedPerformance{id: id, stage: stageID, perf: p})
		}
	}

	ids := make([]string, len(planned))
	for i, pp := range planned {
		ids[i] = pp.id
	}
	existing, err := s.prune(ctx, store.KindPerformance, scheduleID.String(), ids)
	if err != nil {
		return err
	}

	for _, pp := range planned {
		changed, err := s.tx.UpsertPerformance(ctx, store.PerformanceRow{
			ID:         pp.id,
			ScheduleID: scheduleID.String(),
			StageID:    pp.stage.String(),
			Title:      pp.perf.Title,
			Subtitle:   pp.perf.Subtitle,
			StartTime:  store.FormatTime(pp.perf.StartTime),
			EndTime:    store.FormatTime(pp.perf.EndTime),
		})
		if err != nil {
			return s.fail(store.KindPerformance, pp.id, "upsert", err)
		}
		s.record(store.KindPerformance, pp.id, existing[pp.id], changed)

		var rows []store.PerformanceArtistRow
		seen := make(map[model.ArtistID]bool)
		for _, n := range pp.perf.ArtistNames.Items() {
			ref := artists[ident.Key(n)]
			if seen[ref.id] {
				continue
			}
			seen[ref.id] = true
			row := store.PerformanceArtistRow{PerformanceID: pp.id, ArtistID: ref.id.String(), SortIndex: len(rows)}
			if n != ref.name {
				name := n
				row.AnonymousName = &name
			}
			rows = append(rows, row)
		}
		replaced, err := s.tx.ReplacePerformanceArtists(ctx, pp.id, rows)
		if err != nil {
			return s.fail(store.KindPerformance, pp.id, "link", err)
		}
		if replaced {
			s.report.add("performance_artists", pp.id, ActionUpdate)
		}
	}
	return nil
}
