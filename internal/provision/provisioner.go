package provision

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/simpleidserver/envprovision/internal/vars"
)

// Phase identifies which stage of a run applied a variable.
type Phase string

const (
	// PhaseProcess is the in-process environment mutation.
	PhaseProcess Phase = "process"
	// PhasePersist is the platform persistent store write.
	PhasePersist Phase = "persist"
)

// Action records one applied step for one variable.
type Action struct {
	Name  string
	Phase Phase
}

// Report lists the actions a run applied, in the order they happened.
// A run that fails partway returns the report of everything applied so far.
type Report struct {
	Actions []Action
}

func (r *Report) append(name string, phase Phase) {
	r.Actions = append(r.Actions, Action{Name: name, Phase: phase})
}

// Applied counts the actions recorded for the given phase.
func (r *Report) Applied(phase Phase) int {
	n := 0
	for _, a := range r.Actions {
		if a.Phase == phase {
			n++
		}
	}
	return n
}

// SetenvFunc mutates one variable in the current process environment.
type SetenvFunc func(name, value string) error

// Option configures optional provisioner behaviour.
type Option func(*Provisioner)

// WithSetenv overrides the process-scope mutation function (primarily for
// tests; the default is os.Setenv).
func WithSetenv(fn SetenvFunc) Option {
	return func(p *Provisioner) {
		p.setenv = fn
	}
}

// WithPersistRate paces persistence operations at the given ops per second.
// Zero or negative disables pacing.
func WithPersistRate(opsPerSecond float64) Option {
	return func(p *Provisioner) {
		if opsPerSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(opsPerSecond), 1)
		}
	}
}

// Provisioner applies a variable set to the current process environment and
// then to the platform persistent store through the configured Persister.
type Provisioner struct {
	persister Persister
	setenv    SetenvFunc
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New builds a provisioner around the given persistence backend.
func New(persister Persister, logger *zap.Logger, opts ...Option) *Provisioner {
	p := &Provisioner{
		persister: persister,
		setenv:    os.Setenv,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision runs the two phases over the set: process-scope mutation for
// every entry, then one persistence operation per entry. The first error
// aborts the remainder; entries already applied stay applied, and the
// partial report is returned alongside the error.
func (p *Provisioner) Provision(ctx context.Context, set *vars.Set) (*Report, error) {
	report := &Report{}

	for _, entry := range set.Entries() {
		if err := p.setenv(entry.Name, entry.Value); err != nil {
			return report, fmt.Errorf("set %s for current process: %w", entry.Name, err)
		}
		report.append(entry.Name, PhaseProcess)
		p.logger.Info("set variable for current process", zap.String("name", entry.Name))
	}

	for _, entry := range set.Entries() {
		if err := p.wait(ctx); err != nil {
			return report, err
		}
		applied, err := p.persister.Persist(ctx, entry)
		if err != nil {
			return report, fmt.Errorf("persist %s: %w", entry.Name, err)
		}
		if applied {
			report.append(entry.Name, PhasePersist)
			p.logger.Info("persisted variable",
				zap.String("name", entry.Name),
				zap.String("target", p.persister.Target()),
			)
		} else {
			p.logger.Debug("persistence skipped", zap.String("name", entry.Name))
		}
	}

	return report, nil
}

// wait blocks on the pacing limiter when one is configured, and otherwise
// only checks for cancellation between entries.
func (p *Provisioner) wait(ctx context.Context) error {
	if p.limiter != nil {
		return p.limiter.Wait(ctx)
	}
	return ctx.Err()
}
