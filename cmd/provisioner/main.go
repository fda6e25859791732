package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/simpleidserver/envprovision/internal/application"
	"github.com/simpleidserver/envprovision/internal/config"
	"github.com/simpleidserver/envprovision/internal/logging"
)

func main() {
	kingpinApp := kingpin.New("envprovision", "Environment Provisioner - sets identity-server environment variables for the current process and the OS persistent store")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "System environment file appended to on Linux").String()
	setxExe := kingpinApp.Flag("setx", "setx executable invoked for machine-scope persistence on Windows").String()
	processOnly := kingpinApp.Flag("process-only", "Skip the persistence phase").Bool()
	dryRun := kingpinApp.Flag("dry-run", "Log the plan without changing anything").Bool()
	persistRate := kingpinApp.Flag("persist-rate", "Persistence operations per second (set 0 to disable pacing)").Default("-1").Float64()
	verbose := kingpinApp.Flag("verbose", "Enable debug logging").Bool()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := buildOverrides(*configFile, *envFile, *setxExe, *processOnly, *dryRun, *persistRate)

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(*verbose)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app := application.New(cfg, logger)
	if _, err := app.Run(context.Background()); err != nil {
		logger.Fatal("provisioning failed", zap.Error(err))
	}
}

// buildOverrides translates parsed flag values into config overrides,
// leaving untouched flags out so lower-precedence sources apply.
func buildOverrides(configFile, envFile, setxExe string, processOnly, dryRun bool, persistRate float64) *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: configFile,
	}

	if envFile != "" {
		overrides.EnvironmentFile = &envFile
	}

	if setxExe != "" {
		overrides.SetxExecutable = &setxExe
	}

	if processOnly {
		overrides.ProcessOnly = &processOnly
	}

	if dryRun {
		overrides.DryRun = &dryRun
	}

	if persistRate >= 0 {
		overrides.PersistRate = &persistRate
	}

	return overrides
}
