package loader

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// On-disk shapes of the organizer directory files. They mirror the YAML keys
// one to one; conversion into the model happens in the per-entity files.

type organizerFile struct {
	ID           string `yaml:"id,omitempty"`
	Name         string `yaml:"name,omitempty"`
	URL          string `yaml:"url,omitempty"`
	ImageURL     string `yaml:"imageURL,omitempty"`
	IconImageURL string `yaml:"iconImageURL,omitempty"`
}

type eventFile struct {
	Name            string        `yaml:"name,omitempty"`
	TimeZone        string        `yaml:"timeZone,omitempty"`
	StartDate       scalar        `yaml:"startDate,omitempty"`
	EndDate         scalar        `yaml:"endDate,omitempty"`
	ImageURL        string        `yaml:"imageURL,omitempty"`
	IconImageURL    string        `yaml:"iconImageURL,omitempty"`
	SiteMapImageURL string        `yaml:"siteMapImageURL,omitempty"`
	Address         string        `yaml:"address,omitempty"`
	Latitude        *float64      `yaml:"latitude,omitempty"`
	Longitude       *float64      `yaml:"longitude,omitempty"`
	ContactNumbers  []contactFile `yaml:"contactNumbers,omitempty"`
	Stages          []stageFile   `yaml:"stages,omitempty"`
}

type contactFile struct {
	PhoneNumber string `yaml:"phoneNumber"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type stageFile struct {
	Name         string `yaml:"name"`
	Color        string `yaml:"color,omitempty"`
	ImageURL     string `yaml:"imageURL,omitempty"`
	IconImageURL string `yaml:"iconImageURL,omitempty"`
}

// lineupFile is stage-lineups.yml: stage name → lineup.
type lineupFile map[string]lineupEntry

type lineupEntry struct {
	PosterURL string   `yaml:"posterURL,omitempty"`
	Artists   []string `yaml:"artists,omitempty"`
}

type artistMatter struct {
	ImageURL string     `yaml:"imageURL,omitempty" toml:"imageURL,omitempty"`
	LogoURL  string     `yaml:"logoURL,omitempty" toml:"logoURL,omitempty"`
	Kind     string     `yaml:"kind,omitempty" toml:"kind,omitempty"`
	Links    []linkFile `yaml:"links,omitempty" toml:"links,omitempty"`
}

type linkFile struct {
	URL  string `yaml:"url" toml:"url"`
	Type string `yaml:"type,omitempty" toml:"type,omitempty"`
}

type scheduleFile struct {
	Date        string                       `yaml:"date,omitempty"`
	CustomTitle string                       `yaml:"customTitle,omitempty"`
	Stages      map[string][]performanceFile `yaml:"stages"`
}

type performanceFile struct {
	Title    string   `yaml:"title,omitempty"`
	Subtitle *string  `yaml:"subtitle,omitempty"`
	Artist   string   `yaml:"artist,omitempty"`
	Artists  []string `yaml:"artists,omitempty"`
	Start    string   `yaml:"start"`
	End      string   `yaml:"end"`
}

type channelFile struct {
	Name                     string `yaml:"name,omitempty"`
	Description              string `yaml:"description,omitempty"`
	IconImageURL             string `yaml:"iconImageURL,omitempty"`
	HeaderImageURL           string `yaml:"headerImageURL,omitempty"`
	SortIndex                *int   `yaml:"sortIndex,omitempty"`
	DefaultNotificationState string `yaml:"defaultNotificationState,omitempty"`
}

type postMatter struct {
	HeaderImageURL string `yaml:"headerImageURL,omitempty" toml:"headerImageURL,omitempty"`
	Timestamp      scalar `yaml:"timestamp,omitempty" toml:"timestamp,omitempty"`
	IsPinned       bool   `yaml:"isPinned,omitempty" toml:"isPinned,omitempty"`
}

// scalar is a date or date-time kept as written. Both YAML and TOML would
// otherwise resolve a bare 2025-07-11 to UTC midnight before the event's
// zone is known.
type scalar string

func (s *scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a date, got a %s", n.Line, nodeKind(n.Kind))
	}
	if n.ShortTag() == "!!null" {
		*s = ""
		return nil
	}
	*s = scalar(n.Value)
	return nil
}

// MarshalYAML writes the value unquoted so dates stay dates.
func (s scalar) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: string(s)}, nil
}

// UnmarshalText receives the raw bytes of TOML strings and native
// date-times alike.
func (s *scalar) UnmarshalText(b []byte) error {
	*s = scalar(b)
	return nil
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
