package store

// Row types mirror the tables column for column. Instants are RFC 3339 UTC
// strings; see FormatTime.

// OrganizerRow is a row of organizers.
type OrganizerRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	SourceURL    string `db:"source_url"`
	ImageURL     string `db:"image_url"`
	IconImageURL string `db:"icon_image_url"`
}

// EventRow is a row of music_events.
type EventRow struct {
	ID              string   `db:"id"`
	OrganizerID     string   `db:"organizer_id"`
	Name            string   `db:"name"`
	TimeZone        string   `db:"time_zone"`
	StartTime       string   `db:"start_time"`
	EndTime         string   `db:"end_time"`
	ImageURL        string   `db:"image_url"`
	IconImageURL    string   `db:"icon_image_url"`
	SiteMapImageURL string   `db:"site_map_image_url"`
	Address         string   `db:"address"`
	Latitude        *float64 `db:"latitude"`
	Longitude       *float64 `db:"longitude"`
}

// ContactNumberRow is a row of contact_numbers.
type ContactNumberRow struct {
	EventID     string `db:"event_id"`
	SortIndex   int    `db:"sort_index"`
	PhoneNumber string `db:"phone_number"`
	Title       string `db:"title"`
	Description string `db:"description"`
}

// ArtistRow is a row of artists. Links holds a JSON array.
type ArtistRow struct {
	ID            string  `db:"id"`
	EventID       string  `db:"event_id"`
	Name          string  `db:"name"`
	Bio           *string `db:"bio"`
	ImageURL      string  `db:"image_url"`
	LogoURL       string  `db:"logo_url"`
	Kind          string  `db:"kind"`
	Links         string  `db:"links"`
	IsPlaceholder bool    `db:"is_placeholder"`
}

// StageRow is a row of stages.
type StageRow struct {
	ID             string `db:"id"`
	EventID        string `db:"event_id"`
	Name           string `db:"name"`
	SortIndex      int    `db:"sort_index"`
	Color          string `db:"color"`
	ImageURL       string `db:"image_url"`
	IconImageURL   string `db:"icon_image_url"`
	PosterImageURL string `db:"poster_image_url"`
}

// LineupArtistRow is a row of stage_lineup_artists.
type LineupArtistRow struct {
	StageID   string `db:"stage_id"`
	ArtistID  string `db:"artist_id"`
	SortIndex int    `db:"sort_index"`
}

// ScheduleRow is a row of schedules.
type ScheduleRow struct {
	ID          string `db:"id"`
	EventID     string `db:"event_id"`
	Date        string `db:"date"`
	CustomTitle string `db:"custom_title"`
	StartTime   string `db:"start_time"`
	EndTime     string `db:"end_time"`
}

// PerformanceRow is a row of performances.
type PerformanceRow struct {
	ID         string  `db:"id"`
	ScheduleID string  `db:"schedule_id"`
	StageID    string  `db:"stage_id"`
	Title      string  `db:"title"`
	Subtitle   *string `db:"subtitle"`
	StartTime  string  `db:"start_time"`
	EndTime    string  `db:"end_time"`
}

// PerformanceArtistRow is a row of performance_artists. AnonymousName holds
// the schedule's spelling when it differs from the artist's stored name.
type PerformanceArtistRow struct {
	PerformanceID string  `db:"performance_id"`
	ArtistID      string  `db:"artist_id"`
	AnonymousName *string `db:"anonymous_name"`
	SortIndex     int     `db:"sort_index"`
}

// ChannelRow is a row of channels. UserNotificationState is locally owned
// and is only written on insert or through SetChannelNotificationState.
type ChannelRow struct {
	ID                       string `db:"id"`
	EventID                  string `db:"event_id"`
	Name                     string `db:"name"`
	Description              string `db:"description"`
	IconImageURL             string `db:"icon_image_url"`
	HeaderImageURL           string `db:"header_image_url"`
	SortIndex                int    `db:"sort_index"`
	DefaultNotificationState string `db:"default_notification_state"`
	UserNotificationState    string `db:"user_notification_state"`
}

// PostRow is a row of posts.
type PostRow struct {
	ID             string `db:"id"`
	ChannelID      string `db:"channel_id"`
	Title          string `db:"title"`
	Contents       string `db:"contents"`
	HeaderImageURL string `db:"header_image_url"`
	Timestamp      string `db:"timestamp"`
	IsPinned       bool   `db:"is_pinned"`
}
