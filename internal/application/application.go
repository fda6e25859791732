package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/simpleidserver/envprovision/internal/config"
	"github.com/simpleidserver/envprovision/internal/provision"
	"github.com/simpleidserver/envprovision/internal/vars"
)

// App encapsulates the resolved variable set and the provisioner built for
// the host platform.
type App struct {
	set         *vars.Set
	platform    provision.Platform
	provisioner *provision.Provisioner
	logger      *zap.Logger
	dryRun      bool
}

// New initializes the application for the detected host platform.
func New(cfg config.Config, logger *zap.Logger) *App {
	return NewForPlatform(cfg, provision.DetectPlatform(), logger)
}

// NewForPlatform initializes the application for an explicit platform
// classification; extra provisioner options are applied last.
func NewForPlatform(cfg config.Config, platform provision.Platform, logger *zap.Logger, opts ...provision.Option) *App {
	set := vars.Default()
	for _, override := range cfg.VariableOverrides {
		set.Put(override.Name, override.Value)
	}

	options := make([]provision.Option, 0, len(opts)+2)
	if cfg.PersistRate > 0 {
		options = append(options, provision.WithPersistRate(cfg.PersistRate))
	}
	if cfg.DryRun {
		options = append(options, provision.WithSetenv(func(string, string) error { return nil }))
	}
	options = append(options, opts...)

	return &App{
		set:         set,
		platform:    platform,
		provisioner: provision.New(selectPersister(cfg, platform), logger, options...),
		logger:      logger,
		dryRun:      cfg.DryRun,
	}
}

// selectPersister maps the platform classification onto a persistence
// backend, honoring the process-only and dry-run switches.
func selectPersister(cfg config.Config, platform provision.Platform) provision.Persister {
	if cfg.DryRun || cfg.ProcessOnly {
		return provision.NoopPersister{}
	}

	switch platform {
	case provision.PlatformWindows:
		return provision.NewSetxPersister(cfg.SetxExecutable)
	case provision.PlatformLinux:
		return provision.NewEnvFilePersister(cfg.EnvironmentFile)
	default:
		return provision.NoopPersister{}
	}
}

// Run provisions the variable set and logs a completion summary. A failure
// partway leaves already-applied entries in place; the error reports the
// variable that failed.
func (a *App) Run(ctx context.Context) (*provision.Report, error) {
	if a.dryRun {
		a.logger.Info("dry run, no environment changes will be made")
	}
	a.logger.Info("provisioning environment",
		zap.String("platform", a.platform.String()),
		zap.Int("variables", a.set.Len()),
	)

	report, err := a.provisioner.Provision(ctx, a.set)
	if err != nil {
		return report, err
	}

	a.logger.Info("provisioning complete",
		zap.Int("process_scope", report.Applied(provision.PhaseProcess)),
		zap.Int("persisted", report.Applied(provision.PhasePersist)),
	)
	return report, nil
}
