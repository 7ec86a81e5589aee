package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/barysiuk/skillpack/internal/core"
	"github.com/barysiuk/skillpack/internal/core/manifest"
	"github.com/barysiuk/skillpack/internal/core/skill"
	"github.com/barysiuk/skillpack/internal/core/target"
	"github.com/barysiuk/skillpack/internal/logger"
	"github.com/barysiuk/skillpack/internal/report"
	"github.com/barysiuk/skillpack/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// targetFactory builds the real target for a run; dry runs wrap it.
type targetFactory func(opts ...target.Option) target.Target

// runDistribution loads the manifest, runs every skill through the target
// built by newTarget and prints the report. label names the run in the
// progress view.
func runDistribution(cmd *cobra.Command, d *deps, label string, newTarget targetFactory) error {
	s := d.settings
	log := logger.L.WithField("command", cmd.Name())

	m, err := manifest.Load(s.Marketplace)
	if err != nil {
		return err
	}
	resolver, err := d.resolver()
	if err != nil {
		return err
	}
	walker, err := skill.NewWalker(s.Exclude)
	if err != nil {
		return err
	}

	tgt := newTarget(target.WithWalker(walker), target.WithLogger(log))
	if s.DryRun {
		tgt = target.NewDryRun(tgt)
	}
	log.WithFields(logrus.Fields{
		"manifest": s.Marketplace,
		"target":   tgt.Name(),
		"root":     tgt.Root(),
		"resolve":  resolver.Mode(),
	}).Debug("loaded manifest")

	ctx := logger.WithLogger(cmd.Context(), log)
	run := func(ctx context.Context, obs core.Observer) (*core.RunStats, error) {
		o := core.NewOrchestrator(resolver, tgt, core.WithObserver(obs))
		return o.Run(ctx, m, core.RunConfig{Jobs: s.Jobs})
	}

	var stats *core.RunStats
	out := cmd.OutOrStdout()
	if s.Progress && isTerminal(out) {
		release := logger.Hold()
		stats, err = tui.RunWithProgress(ctx, out, label, run)
		if relErr := release(); relErr != nil {
			log.WithError(relErr).Debug("failed to flush held log lines")
		}
	} else {
		if s.Progress {
			log.Debug("output is not a terminal, progress view disabled")
		}
		stats, err = run(ctx, nil)
	}

	var rootErr *core.OutputRootError
	if errors.As(err, &rootErr) {
		return err
	}

	code := report.New(out, report.WithStrict(s.Strict), report.WithVerbose(s.Verbose)).Report(stats, s.DryRun)
	if err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("%d skill(s) failed: %w", stats.Failed, stats.Err())
	}
	return nil
}
