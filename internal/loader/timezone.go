package loader

import (
	"strings"
	"time"
)

// zoneAbbreviations maps common abbreviations to a representative IANA zone.
// Abbreviations are ambiguous in general; this table covers the ones festival
// organizers actually write.
var zoneAbbreviations = map[string]string{
	"UTC":  "UTC",
	"GMT":  "Etc/GMT",
	"PST":  "America/Los_Angeles",
	"PDT":  "America/Los_Angeles",
	"MST":  "America/Denver",
	"MDT":  "America/Denver",
	"CST":  "America/Chicago",
	"CDT":  "America/Chicago",
	"EST":  "America/New_York",
	"EDT":  "America/New_York",
	"AKST": "America/Anchorage",
	"AKDT": "America/Anchorage",
	"HST":  "Pacific/Honolulu",
	"AST":  "America/Halifax",
	"ADT":  "America/Halifax",
	"NST":  "America/St_Johns",
	"NDT":  "America/St_Johns",
	"BST":  "Europe/London",
	"WET":  "Europe/Lisbon",
	"CET":  "Europe/Paris",
	"CEST": "Europe/Paris",
	"EET":  "Europe/Athens",
	"EEST": "Europe/Athens",
	"IST":  "Asia/Kolkata",
	"JST":  "Asia/Tokyo",
	"AEST": "Australia/Sydney",
	"AEDT": "Australia/Sydney",
	"NZST": "Pacific/Auckland",
	"NZDT": "Pacific/Auckland",
}

// ResolveLocation resolves a time zone name as an IANA identifier first, then
// as a known abbreviation. ok is false when neither matches, including an
// empty name; loc is then nil and the caller picks the fallback.
func ResolveLocation(name string) (loc *time.Location, ok bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	// time.LoadLocation treats "" and "Local" specially; an explicit
	// "Local" is honored as the system zone.
	if l, err := time.LoadLocation(name); err == nil {
		return l, true
	}
	if iana, found := zoneAbbreviations[strings.ToUpper(name)]; found {
		if l, err := time.LoadLocation(iana); err == nil {
			return l, true
		}
	}
	return nil, false
}
