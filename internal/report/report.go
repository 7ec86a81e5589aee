// Package report renders the outcome of a distribution run for humans.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/barysiuk/skillpack/internal/core"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// Reporter writes run summaries to one writer. Styling follows the writer:
// terminals get color, pipes and files get plain text.
type Reporter struct {
	w       io.Writer
	strict  bool
	verbose bool

	ok      lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	heading lipgloss.Style
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithStrict makes Report return 1 when any skill failed.
func WithStrict(strict bool) Option {
	return func(r *Reporter) { r.strict = strict }
}

// WithVerbose lists every artifact, not only failures.
func WithVerbose(verbose bool) Option {
	return func(r *Reporter) { r.verbose = verbose }
}

// New creates a Reporter writing to w.
func New(w io.Writer, opts ...Option) *Reporter {
	re := lipgloss.NewRenderer(w)
	r := &Reporter{
		w:       w,
		ok:      re.NewStyle().Foreground(lipgloss.Color("#10B981")),
		fail:    re.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		muted:   re.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		heading: re.NewStyle().Bold(true),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report prints artifacts (dry runs and verbose mode), failures and a summary,
// and returns the process exit code for the run.
func (r *Reporter) Report(stats *core.RunStats, dryRun bool) int {
	listed := (dryRun || r.verbose) && len(stats.Artifacts) > 0
	if listed {
		r.artifacts(stats, dryRun)
	}
	r.failures(stats, listed)
	r.summary(stats, dryRun)

	if r.strict && stats.Failed > 0 {
		return 1
	}
	return 0
}

func (r *Reporter) artifacts(stats *core.RunStats, dryRun bool) {
	width := 0
	for _, a := range stats.Artifacts {
		width = max(width, ansi.StringWidth(a.OutputName))
	}

	verb := "->"
	if dryRun {
		verb = "would write"
	}
	for _, a := range stats.Artifacts {
		pad := strings.Repeat(" ", width-ansi.StringWidth(a.OutputName))
		line := fmt.Sprintf("  %s %s%s  %s %s", r.ok.Render("✓"), a.OutputName, pad, r.muted.Render(verb), a.Path)
		if !dryRun {
			line += r.muted.Render(" " + detail(a))
		}
		fmt.Fprintln(r.w, line)
	}
}

func detail(a core.Artifact) string {
	if a.Links > 0 {
		return "(symlink)"
	}
	return fmt.Sprintf("(%s, %s)", plural(a.Files, "file"), humanize.Bytes(uint64(a.Bytes)))
}

func (r *Reporter) failures(stats *core.RunStats, listed bool) {
	if len(stats.Failures) == 0 {
		return
	}
	if listed {
		fmt.Fprintln(r.w)
	}
	fmt.Fprintln(r.w, r.heading.Render("Failures:"))
	for _, f := range stats.Failures {
		fmt.Fprintf(r.w, "  %s %s %s: %v\n", r.fail.Render("✗"), f.Skill, r.muted.Render("("+f.Plugin+")"), f.Err)
	}
}

func (r *Reporter) summary(stats *core.RunStats, dryRun bool) {
	counts := fmt.Sprintf("%d succeeded, %d failed", stats.Succeeded, stats.Failed)
	if stats.Failed > 0 {
		counts = r.fail.Render(counts)
	} else {
		counts = r.ok.Render(counts)
	}

	var b strings.Builder
	if dryRun {
		b.WriteString("Dry run: ")
		b.WriteString(counts)
		b.WriteString(r.muted.Render(" (nothing written)"))
	} else {
		b.WriteString(counts)
		b.WriteString(r.muted.Render(fmt.Sprintf(" · %s, %s, %s, %s",
			plural(stats.Files, "file"),
			humanize.Bytes(uint64(stats.Bytes)),
			plural(stats.Links, "link"),
			plural(stats.Archives, "archive"))))
	}
	if stats.SkippedPlugins > 0 {
		b.WriteString(r.muted.Render(fmt.Sprintf(" · %s skipped", plural(stats.SkippedPlugins, "empty plugin"))))
	}
	if stats.Total > stats.Succeeded+stats.Failed {
		b.WriteString(r.fail.Render(fmt.Sprintf(" · %d not processed", stats.Total-stats.Succeeded-stats.Failed)))
	}
	fmt.Fprintln(r.w, b.String())
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
