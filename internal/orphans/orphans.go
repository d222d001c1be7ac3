// Package orphans finds artist profiles no performance uses and performance
// names with no profile, and pairs them up as likely misspellings. Detection
// never changes data; ApplyFixes optionally rewrites schedule files.
package orphans

import (
	"sort"

	"github.com/papapumpkin/lineup/internal/model"
)

// DefaultThreshold is the minimum similarity for a candidate fix.
const DefaultThreshold = 0.6

// Warning is a candidate rename: the schedule's spelling and the artist
// profile it most likely refers to. It is informational, never an error.
type Warning struct {
	Event           string
	PerformanceName string
	ArtistName      string
	Similarity      float64
}

// Result is the orphan analysis of one event.
type Result struct {
	Event string
	// OrphanedArtists have a profile but appear in no performance.
	OrphanedArtists []string
	// OrphanedPerformances are performance artist names with no profile.
	OrphanedPerformances []string
	// Candidates pair the two lists, most similar first.
	Candidates []Warning
}

// Detect compares an event's artist profiles with the names its performances
// use. Pairs scoring at least threshold are reported; a threshold <= 0 means
// DefaultThreshold.
func Detect(ev model.EventConfiguration, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	profiles := model.NewOrderedSet[string]()
	for _, a := range ev.Artists {
		if !a.Placeholder {
			profiles.Add(a.Name)
		}
	}
	performing := model.NewOrderedSet[string]()
	for _, sc := range ev.Schedule {
		for _, perfs := range sc.StageSchedules {
			for _, p := range perfs {
				for _, n := range p.ArtistNames.Items() {
					performing.Add(n)
				}
			}
		}
	}

	res := Result{Event: ev.Info.Name}
	for _, n := range profiles.Items() {
		if !performing.Contains(n) {
			res.OrphanedArtists = append(res.OrphanedArtists, n)
		}
	}
	for _, n := range performing.Items() {
		if !profiles.Contains(n) {
			res.OrphanedPerformances = append(res.OrphanedPerformances, n)
		}
	}
	sort.Strings(res.OrphanedArtists)
	sort.Strings(res.OrphanedPerformances)

	for _, p := range res.OrphanedPerformances {
		for _, a := range res.OrphanedArtists {
			if score := Similarity(p, a); score >= threshold {
				res.Candidates = append(res.Candidates, Warning{
					Event:           res.Event,
					PerformanceName: p,
					ArtistName:      a,
					Similarity:      score,
				})
			}
		}
	}
	sort.SliceStable(res.Candidates, func(i, j int) bool {
		return res.Candidates[i].Similarity > res.Candidates[j].Similarity
	})
	return res
}

// Best keeps the highest-scoring candidate per performance name. Candidates
// must already be sorted by descending similarity, as Detect returns them.
func Best(candidates []Warning) []Warning {
	seen := make(map[string]bool)
	var out []Warning
	for _, c := range candidates {
		if seen[c.PerformanceName] {
			continue
		}
		seen[c.PerformanceName] = true
		out = append(out, c)
	}
	return out
}
