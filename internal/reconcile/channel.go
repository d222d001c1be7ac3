package reconcile

import (
	"context"

	"github.com/papapumpkin/lineup/internal/ident"
	"github.com/papapumpkin/lineup/internal/model"
	"github.com/papapumpkin/lineup/internal/store"
)

func (s *syncer) channels(ctx context.Context, eventID model.EventID, ev model.EventConfiguration) error {
	ids := make([]string, len(ev.Channels))
	for i, cc := range ev.Channels {
		ids[i] = ident.Derive[model.ChannelTag](eventID, cc.Info.Name).String()
	}
	existing, err := s.prune(ctx, store.KindChannel, eventID.String(), ids)
	if err != nil {
		return err
	}
	for i, cc := range ev.Channels {
		ch := cc.Info
		changed, err := s.tx.UpsertChannel(ctx, store.ChannelRow{
			ID:                       ids[i],
			EventID:                  eventID.String(),
			Name:                     ch.Name,
			Description:              ch.Description,
			IconImageURL:             ch.IconImageURL,
			HeaderImageURL:           ch.HeaderImageURL,
			SortIndex:                ch.SortIndex,
			DefaultNotificationState: string(ch.DefaultNotificationState),
			UserNotificationState:    string(ch.DefaultNotificationState),
		})
		if err != nil {
			return s.fail(store.KindChannel, ids[i], "upsert", err)
		}
		s.record(store.KindChannel, ids[i], existing[ids[i]], changed)
		if err := s.posts(ctx, model.ChannelID(ids[i]), cc.Posts); err != nil {
			return err
		}
	}
	return nil
}

func (s *syncer) posts(ctx context.Context, channelID model.ChannelID, posts []model.Post) error {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = ident.Derive[model.PostTag](channelID, p.Title).String()
	}
	existing, err := s.prune(ctx, store.KindPost, channelID.String(), ids)
	if err != nil {
		return err
	}
	stamps, err := s.tx.PostTimestamps(ctx, channelID.String())
	if err != nil {
		return s.fail(store.KindPost, "", "list", err)
	}
	for i, p := range posts {
		ts := stamps[ids[i]]
		switch {
		case p.Timestamp != nil:
			ts = store.FormatTime(*p.Timestamp)
		case ts == "":
			ts = store.FormatTime(s.now)
		}
		changed, err := s.tx.UpsertPost(ctx, store.PostRow{
			ID:             ids[i],
			ChannelID:      channelID.String(),
			Title:          p.Title,
			Contents:       p.Contents,
			HeaderImageURL: p.HeaderImageURL,
			Timestamp:      ts,
			IsPinned:       p.IsPinned,
		})
		if err != nil {
			return s.fail(store.KindPost, ids[i], "upsert", err)
		}
		s.record(store.KindPost, ids[i], existing[ids[i]], changed)
	}
	return nil
}
