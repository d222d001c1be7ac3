// Package model holds the in-memory configuration an organizer directory
// compiles to. Values carry names, not IDs; identities are derived from the
// names when the configuration is reconciled into storage.
package model

import (
	"time"

	"github.com/papapumpkin/lineup/internal/ident"
)

// Entity tags for ident.ID.
type (
	OrganizerTag   struct{}
	EventTag       struct{}
	ArtistTag      struct{}
	StageTag       struct{}
	ScheduleTag    struct{}
	PerformanceTag struct{}
	ChannelTag     struct{}
	PostTag        struct{}
)

// Tagged identifier types.
type (
	OrganizerID   = ident.ID[OrganizerTag]
	EventID       = ident.ID[EventTag]
	ArtistID      = ident.ID[ArtistTag]
	StageID       = ident.ID[StageTag]
	ScheduleID    = ident.ID[ScheduleTag]
	PerformanceID = ident.ID[PerformanceTag]
	ChannelID     = ident.ID[ChannelTag]
	PostID        = ident.ID[PostTag]
)

// OrganizerConfiguration is the root of a parsed organizer directory. An
// organizer may have no events yet.
type OrganizerConfiguration struct {
	Info   Organizer
	Events []EventConfiguration
}

// Organizer is the organizer draft from organizer-info.yml.
type Organizer struct {
	ID           OrganizerID
	SourceURL    string `validate:"omitempty,url"`
	Name         string
	ImageURL     string `validate:"omitempty,url"`
	IconImageURL string `validate:"omitempty,url"`
}

// EventConfiguration is one festival instance and everything below it.
type EventConfiguration struct {
	// Dir is the event directory name, used for error context and as the
	// fallback event name.
	Dir          string
	Info         EventInfo
	Artists      []Artist
	Stages       []Stage
	Schedule     []Schedule
	StageLineups map[string]StageLineup
	Channels     []ChannelConfiguration
}

// EventInfo is the event draft from event-info.yml.
type EventInfo struct {
	Name            string
	TimeZoneName    string
	Location        *time.Location `validate:"-"`
	StartTime       time.Time
	EndTime         time.Time
	ImageURL        string `validate:"omitempty,url"`
	IconImageURL    string `validate:"omitempty,url"`
	SiteMapImageURL string `validate:"omitempty,url"`
	Address         string
	Latitude        *float64        `validate:"omitempty,latitude"`
	Longitude       *float64        `validate:"omitempty,longitude"`
	ContactNumbers  []ContactNumber `validate:"dive"`
}

// ContactNumber is a phone number shown to attendees.
type ContactNumber struct {
	PhoneNumber string `validate:"required"`
	Title       string
	Description string
}

// Artist is an artist profile. Name is the profile file name.
type Artist struct {
	Name     string `validate:"required"`
	Bio      *string
	ImageURL string `validate:"omitempty,url"`
	LogoURL  string `validate:"omitempty,url"`
	Kind     string
	Links    []Link `validate:"dive"`
	// Placeholder marks an artist synthesized from a name referenced by a
	// performance or lineup without a profile file.
	Placeholder bool
}

// LinkType names the platform a social link points at.
type LinkType string

// Known link types; anything else is kept verbatim.
const (
	LinkWebsite    LinkType = "website"
	LinkSpotify    LinkType = "spotify"
	LinkSoundCloud LinkType = "soundcloud"
	LinkInstagram  LinkType = "instagram"
	LinkFacebook   LinkType = "facebook"
	LinkYouTube    LinkType = "youtube"
	LinkBandcamp   LinkType = "bandcamp"
	LinkTikTok     LinkType = "tiktok"
	LinkX          LinkType = "x"
)

// Link is one social or web link on an artist profile.
type Link struct {
	URL  string   `json:"url" validate:"required,url"`
	Type LinkType `json:"type"`
}

// Stage is a venue area declared in event-info.yml.
type Stage struct {
	Name         string `validate:"required"`
	Color        string `validate:"omitempty,hexcolor"`
	ImageURL     string `validate:"omitempty,url"`
	IconImageURL string `validate:"omitempty,url"`
}

// StageLineup is the poster and billed artists for one stage.
type StageLineup struct {
	PosterURL string `validate:"omitempty,url"`
	Artists   *OrderedSet[string]
}

// ScheduleMetadata describes one schedule day after time resolution.
type ScheduleMetadata struct {
	// Date is the festival day the schedule belongs to, formatted 2006-01-02.
	Date        string
	CustomTitle string
	StartTime   time.Time
	EndTime     time.Time
}

// Schedule is one day (or custom-titled block) of performances.
type Schedule struct {
	// Source is the schedule file name without extension.
	Source         string
	Metadata       ScheduleMetadata
	StageSchedules map[string][]Performance
}

// Performance is one resolved set on one stage.
type Performance struct {
	Title       string
	Subtitle    *string
	ArtistNames *OrderedSet[string]
	StartTime   time.Time
	EndTime     time.Time
	StageName   string
}

// NotificationState is a channel subscription state.
type NotificationState string

// Notification states.
const (
	Subscribed   NotificationState = "subscribed"
	Unsubscribed NotificationState = "unsubscribed"
)

// ChannelConfiguration is one communications channel and its posts.
type ChannelConfiguration struct {
	Info  Channel
	Posts []Post
}

// Channel is the channel draft from channel-info.yaml.
type Channel struct {
	Name                     string `validate:"required"`
	Description              string
	IconImageURL             string            `validate:"omitempty,url"`
	HeaderImageURL           string            `validate:"omitempty,url"`
	SortIndex                int               `validate:"gte=0"`
	DefaultNotificationState NotificationState `validate:"oneof=subscribed unsubscribed"`
}

// Post is one Markdown post inside a channel directory.
type Post struct {
	Title          string `validate:"required"`
	Contents       string
	HeaderImageURL string `validate:"omitempty,url"`
	// Timestamp is nil when the source omits it; the post is then stamped
	// with the import time when it is first stored.
	Timestamp *time.Time
	IsPinned  bool
}
