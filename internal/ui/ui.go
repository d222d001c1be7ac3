// Package ui renders human-facing CLI output: validation results, sync
// reports, orphan candidates and store status. It is separate from logging;
// everything here is meant to be read by a person at a terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/papapumpkin/lineup/internal/festivalpro"
	"github.com/papapumpkin/lineup/internal/loader"
	"github.com/papapumpkin/lineup/internal/model"
	"github.com/papapumpkin/lineup/internal/orphans"
	"github.com/papapumpkin/lineup/internal/reconcile"
	"github.com/papapumpkin/lineup/internal/store"
)

// Printer writes styled output. Color is used only when the destination is
// a terminal.
type Printer struct {
	w       io.Writer
	bold    lipgloss.Style
	dim     lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	heading lipgloss.Style
}

// New returns a Printer writing to stderr.
func New() *Printer {
	return NewWriter(os.Stderr)
}

// NewWriter returns a Printer writing to w.
func NewWriter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		bold:    r.NewStyle().Bold(true),
		dim:     r.NewStyle().Faint(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		bad:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		heading: r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
	}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Error prints a red error line.
func (p *Printer) Error(msg string) {
	p.printf("%s %s\n", p.bad.Render("error:"), msg)
}

// Warn prints a yellow warning line.
func (p *Printer) Warn(msg string) {
	p.printf("%s %s\n", p.warn.Render("warning:"), msg)
}

// Info prints a dimmed informational line.
func (p *Printer) Info(msg string) {
	p.printf("%s\n", p.dim.Render(msg))
}

// Success prints a green check line.
func (p *Printer) Success(msg string) {
	p.printf("%s %s\n", p.ok.Render("✓"), msg)
}

// Loaded summarizes a parsed organizer directory.
func (p *Printer) Loaded(cfg model.OrganizerConfiguration) {
	p.printf("%s %s (%s)\n", p.heading.Render("organizer"), cfg.Info.Name, cfg.Info.ID)
	for _, ev := range cfg.Events {
		perfs := 0
		for _, s := range ev.Schedule {
			for _, stage := range s.StageSchedules {
				perfs += len(stage)
			}
		}
		posts := 0
		for _, c := range ev.Channels {
			posts += len(c.Posts)
		}
		p.printf("  %s %s\n", p.bold.Render("•"), ev.Info.Name)
		p.printf("    %s\n", p.dim.Render(fmt.Sprintf(
			"%s – %s · %s · %s · %s · %s · %s",
			ev.Info.StartTime.Format("Jan 2 2006"),
			ev.Info.EndTime.Format("Jan 2 2006"),
			plural(len(ev.Stages), "stage"),
			plural(len(ev.Artists), "artist"),
			plural(len(ev.Schedule), "schedule"),
			plural(perfs, "performance"),
			plural(posts, "post"),
		)))
	}
}

// ValidationResult prints the outcome of loader.Validate.
func (p *Printer) ValidationResult(name string, errs []loader.ValidationError) {
	if len(errs) == 0 {
		p.printf("%s %q: no errors\n", p.ok.Render("✓ valid"), name)
		return
	}
	p.printf("%s %q: %s:\n", p.bad.Render("✗ invalid"), name, plural(len(errs), "error"))
	for _, e := range errs {
		p.printf("  %s %s %s\n", p.bad.Render("•"), p.dim.Render("["+string(e.Category)+"]"), e.Error())
	}
}

// Orphans prints one event's orphan analysis.
func (p *Printer) Orphans(res orphans.Result) {
	if len(res.OrphanedArtists) == 0 && len(res.OrphanedPerformances) == 0 {
		p.printf("%s %s: no orphans\n", p.ok.Render("✓"), res.Event)
		return
	}
	p.printf("%s %s\n", p.heading.Render("orphans in"), res.Event)
	if len(res.OrphanedArtists) > 0 {
		p.printf("  profiles without performances: %s\n", strings.Join(res.OrphanedArtists, ", "))
	}
	if len(res.OrphanedPerformances) > 0 {
		p.printf("  performers without profiles:   %s\n", strings.Join(res.OrphanedPerformances, ", "))
	}
	for _, c := range res.Candidates {
		p.printf("  %s %q → %q %s\n", p.warn.Render("?"), c.PerformanceName, c.ArtistName,
			p.dim.Render(fmt.Sprintf("(%.0f%% similar)", c.Similarity*100)))
	}
}

// FileChanges prints the lines an orphan fix rewrote or would rewrite.
func (p *Printer) FileChanges(changes []orphans.FileChange, dryRun bool) {
	verb := "rewrote"
	if dryRun {
		verb = "would rewrite"
	}
	for _, fc := range changes {
		p.printf("%s %s\n", p.heading.Render(verb), fc.Path)
		for _, l := range fc.Lines {
			p.printf("  %s %s\n", p.bad.Render(fmt.Sprintf("-%d", l.Line)), l.Old)
			p.printf("  %s %s\n", p.ok.Render(fmt.Sprintf("+%d", l.Line)), l.New)
		}
	}
}

// SyncReport prints the outcome of a sync.
func (p *Printer) SyncReport(r *reconcile.Report) {
	title := "sync complete"
	if r.DryRun {
		title = "dry run (rolled back)"
	}
	p.printf("%s %s %s\n", p.ok.Render("✓ "+title), r.OrganizerID, p.dim.Render("run "+r.RunID))
	for _, kc := range r.ByKind() {
		style := p.ok
		switch kc.Type {
		case reconcile.ActionUpdate:
			style = p.warn
		case reconcile.ActionDelete:
			style = p.bad
		}
		p.printf("  %s %-20s %s\n", style.Render(fmt.Sprintf("%-6s", kc.Type)), kc.Kind, humanize.Comma(int64(kc.Number)))
	}
	p.printf("  %s\n", p.dim.Render(fmt.Sprintf(
		"created %s · updated %s · deleted %s · unchanged %s",
		humanize.Comma(int64(r.Count(reconcile.ActionCreate))),
		humanize.Comma(int64(r.Count(reconcile.ActionUpdate))),
		humanize.Comma(int64(r.Count(reconcile.ActionDelete))),
		humanize.Comma(int64(r.Unchanged)),
	)))
}

// TableCounts prints per-table row counts.
func (p *Printer) TableCounts(driver string, counts []store.TableCount) {
	p.printf("%s %s\n", p.heading.Render("store"), driver)
	var total int64
	for _, c := range counts {
		total += c.Rows
		p.printf("  %-24s %10s\n", c.Table, humanize.Comma(c.Rows))
	}
	p.printf("  %-24s %10s\n", p.bold.Render("total"), humanize.Comma(total))
}

// ImportResult prints the schedules a FestivalPro import produced.
func (p *Printer) ImportResult(res festivalpro.Result, dryRun bool) {
	verb := "wrote"
	if dryRun {
		verb = "would write"
	}
	for _, w := range res.Schedules {
		p.printf("%s %s %s\n", p.ok.Render(verb), w.Path, p.dim.Render("("+plural(w.Performances, "performance")+")"))
	}
	for _, msg := range res.Warnings {
		p.Warn(msg)
	}
}

func plural(n int, noun string) string {
	return humanize.Comma(int64(n)) + " " + english.PluralWord(n, noun, "")
}
