package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/barysiuk/skillpack/internal/core/manifest"
	"github.com/barysiuk/skillpack/internal/core/skill"
	"github.com/barysiuk/skillpack/internal/core/target"
	"github.com/barysiuk/skillpack/internal/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Orchestrator drives one distribution run: it walks the manifest, resolves
// every skill and hands it to a target. A failing skill never stops the
// others.
type Orchestrator struct {
	resolver *skill.Resolver
	target   target.Target
	log      *logrus.Entry
	observer Observer

	emitMu sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for per-skill messages. Without it the
// logger carried by the Run context is used.
func WithLogger(l *logrus.Entry) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithObserver registers a callback for run and skill events.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// NewOrchestrator creates an Orchestrator for one resolver and target.
func NewOrchestrator(resolver *skill.Resolver, tgt target.Target, opts ...Option) *Orchestrator {
	o := &Orchestrator{resolver: resolver, target: tgt}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunConfig tunes a single Run.
type RunConfig struct {
	// Jobs is the number of skills processed concurrently. Values <= 1 run
	// strictly sequentially in manifest order.
	Jobs int
}

// task is one manifest skill entry scheduled for processing.
type task struct {
	index  int
	plugin manifest.Plugin
	raw    string
	output string
}

// Run processes every skill in m. It returns an *OutputRootError when the
// target cannot be prepared, and ctx.Err() together with partial stats when
// the context is cancelled. Per-skill failures are only recorded in the stats.
func (o *Orchestrator) Run(ctx context.Context, m *manifest.Manifest, cfg RunConfig) (*RunStats, error) {
	log := o.logger(ctx)
	stats := &RunStats{}

	if err := o.target.Prepare(); err != nil {
		return stats, &OutputRootError{Path: o.target.Root(), Err: err}
	}

	tasks := o.plan(log, m, stats)
	stats.Total = len(tasks)
	log.WithFields(logrus.Fields{
		"target": o.target.Name(),
		"root":   o.target.Root(),
		"skills": stats.Total,
	}).Debug("starting run")
	o.emit(Event{Kind: RunStarted, Total: stats.Total})

	if cfg.Jobs <= 1 {
		for _, t := range tasks {
			if ctx.Err() != nil {
				break
			}
			o.process(ctx, log, t, stats)
		}
	} else {
		o.runParallel(ctx, log, tasks, cfg.Jobs, stats)
	}

	stats.sort()
	o.emit(Event{Kind: RunFinished, Total: stats.Total})

	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("run interrupted")
		return stats, err
	}
	return stats, nil
}

// plan flattens the manifest into tasks in manifest order, skipping empty
// plugins and warning about output names claimed by more than one skill.
func (o *Orchestrator) plan(log *logrus.Entry, m *manifest.Manifest, stats *RunStats) []task {
	var tasks []task
	owners := make(map[string]string)

	for _, p := range m.Plugins {
		if len(p.Skills) == 0 {
			log.WithField("plugin", p.Name).Info("plugin lists no skills, skipping")
			stats.SkippedPlugins++
			continue
		}
		for _, raw := range p.Skills {
			t := task{
				index:  len(tasks),
				plugin: p,
				raw:    raw,
				output: o.resolver.OutputName(p, raw),
			}
			if t.output != "" {
				if prev, ok := owners[t.output]; ok {
					log.WithFields(logrus.Fields{
						"output": t.output,
						"skill":  raw,
						"first":  prev,
					}).Warn("output name already used by another skill; the later one wins (use --prefix to avoid collisions)")
				} else {
					owners[t.output] = raw
				}
			}
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// runParallel processes tasks on at most jobs workers. Tasks sharing an
// output name form one group that a single worker handles in manifest order.
func (o *Orchestrator) runParallel(ctx context.Context, log *logrus.Entry, tasks []task, jobs int, stats *RunStats) {
	var groups [][]task
	byOutput := make(map[string]int)
	for _, t := range tasks {
		if t.output == "" {
			groups = append(groups, []task{t})
			continue
		}
		if i, ok := byOutput[t.output]; ok {
			groups[i] = append(groups[i], t)
			continue
		}
		byOutput[t.output] = len(groups)
		groups = append(groups, []task{t})
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	for _, group := range groups {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			for _, t := range group {
				if ctx.Err() != nil {
					return nil
				}
				o.process(ctx, log, t, stats)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// process resolves and materializes one skill, recording the outcome.
func (o *Orchestrator) process(ctx context.Context, log *logrus.Entry, t task, stats *RunStats) {
	o.emit(Event{Kind: SkillStarted, Index: t.index, Plugin: t.plugin.Name, Skill: t.raw, OutputName: t.output})
	skillLog := log.WithFields(logrus.Fields{"plugin": t.plugin.Name, "skill": t.raw})

	ref, res, err := o.materialize(t)
	if err != nil {
		path := t.raw
		if ref != nil {
			path = ref.SourceDir
		} else if located, lerr := o.resolver.Locate(t.plugin, t.raw); lerr == nil {
			path = located.SourceDir
		}
		skillLog.WithError(err).WithField("path", path).Error("skill failed")
		stats.fail(Failure{Index: t.index, Plugin: t.plugin.Name, Skill: t.raw, Err: err})
		o.emit(Event{Kind: SkillFailed, Index: t.index, Plugin: t.plugin.Name, Skill: t.raw, OutputName: t.output, Err: err})
		return
	}

	skillLog.WithFields(logrus.Fields{"path": res.Path, "files": res.Files}).Debug("skill done")
	stats.succeed(Artifact{
		Index:      t.index,
		Plugin:     t.plugin.Name,
		Skill:      t.raw,
		OutputName: ref.OutputName,
		Path:       res.Path,
		Files:      res.Files,
		Bytes:      res.Bytes,
		Links:      res.Links,
	}, res)
	o.emit(Event{Kind: SkillSucceeded, Index: t.index, Plugin: t.plugin.Name, Skill: t.raw, OutputName: ref.OutputName, Path: res.Path})
}

// materialize turns a panic inside resolution or the target into an error
// for that skill.
func (o *Orchestrator) materialize(t task) (ref *skill.Ref, res target.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing skill: %v", r)
		}
	}()

	ref, err = o.resolver.Resolve(t.plugin, t.raw)
	if err != nil {
		return ref, res, err
	}
	res, err = o.target.Materialize(ref)
	return ref, res, err
}

func (o *Orchestrator) logger(ctx context.Context) *logrus.Entry {
	if o.log != nil {
		return o.log
	}
	return logger.G(ctx)
}

func (o *Orchestrator) emit(e Event) {
	if o.observer == nil {
		return
	}
	o.emitMu.Lock()
	defer o.emitMu.Unlock()
	o.observer(e)
}
