package application

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/simpleidserver/envprovision/internal/config"
	"github.com/simpleidserver/envprovision/internal/provision"
	"github.com/simpleidserver/envprovision/internal/vars"
)

func recordingSetenv(env map[string]string) provision.Option {
	return provision.WithSetenv(func(name, value string) error {
		env[name] = value
		return nil
	})
}

func TestRunLinuxAppendsToEnvironmentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environment")
	cfg := config.Config{EnvironmentFile: path, SetxExecutable: "setx"}
	env := make(map[string]string)

	app := NewForPlatform(cfg, provision.PlatformLinux, zaptest.NewLogger(t), recordingSetenv(env))
	report, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := vars.Default()
	if len(env) != want.Len() {
		t.Fatalf("expected %d process variables, got %d", want.Len(), len(env))
	}
	if report.Applied(provision.PhasePersist) != want.Len() {
		t.Fatalf("expected %d persisted entries, got %d", want.Len(), report.Applied(provision.PhasePersist))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read environment file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != want.Len() {
		t.Fatalf("expected %d lines, got %d", want.Len(), len(lines))
	}
	for i, e := range want.Entries() {
		expected := e.Name + "=\"" + e.Value + "\""
		if lines[i] != expected {
			t.Fatalf("line %d: expected %s, got %s", i, expected, lines[i])
		}
	}
}

func TestRunOtherPlatformSkipsPersistence(t *testing.T) {
	cfg := config.Config{EnvironmentFile: "/etc/environment", SetxExecutable: "setx"}
	env := make(map[string]string)

	app := NewForPlatform(cfg, provision.PlatformOther, zaptest.NewLogger(t), recordingSetenv(env))
	report, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(env) != vars.Default().Len() {
		t.Fatalf("expected process phase to complete, got %d variables", len(env))
	}
	if report.Applied(provision.PhasePersist) != 0 {
		t.Fatalf("expected no persistence on other platform")
	}
}

func TestRunProcessOnlySkipsPersistenceOnLinux(t *testing.T) {
	cfg := config.Config{EnvironmentFile: filepath.Join(t.TempDir(), "environment"), ProcessOnly: true}

	app := NewForPlatform(cfg, provision.PlatformLinux, zaptest.NewLogger(t), recordingSetenv(make(map[string]string)))
	report, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.Applied(provision.PhasePersist) != 0 {
		t.Fatalf("expected no persistence in process-only mode")
	}
	if _, statErr := os.Stat(cfg.EnvironmentFile); !os.IsNotExist(statErr) {
		t.Fatalf("expected environment file untouched, stat returned %v", statErr)
	}
}

func TestRunDryRunHasNoSideEffects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environment")
	cfg := config.Config{EnvironmentFile: path, DryRun: true}

	name := vars.Default().Entries()[0].Name
	t.Setenv(name, "untouched")

	app := NewForPlatform(cfg, provision.PlatformLinux, zaptest.NewLogger(t))
	report, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if os.Getenv(name) != "untouched" {
		t.Fatalf("expected process environment untouched in dry run")
	}
	if report.Applied(provision.PhasePersist) != 0 {
		t.Fatalf("expected no persistence in dry run")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected environment file untouched, stat returned %v", statErr)
	}
}

func TestRunAppliesVariableOverrides(t *testing.T) {
	cfg := config.Config{
		ProcessOnly: true,
		VariableOverrides: []vars.Entry{
			{Name: "ASPNETCORE_ENVIRONMENT", Value: "Staging"},
			{Name: "EXTRA_FLAG", Value: "on"},
		},
	}
	env := make(map[string]string)

	app := NewForPlatform(cfg, provision.PlatformOther, zaptest.NewLogger(t), recordingSetenv(env))
	if _, err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if env["ASPNETCORE_ENVIRONMENT"] != "Staging" {
		t.Fatalf("expected override applied, got %q", env["ASPNETCORE_ENVIRONMENT"])
	}
	if env["EXTRA_FLAG"] != "on" {
		t.Fatalf("expected new variable appended, got %q", env["EXTRA_FLAG"])
	}
	if len(env) != vars.Default().Len()+1 {
		t.Fatalf("expected embedded set plus one, got %d", len(env))
	}
}

func TestRunSurfacesPersistenceFailure(t *testing.T) {
	cfg := config.Config{EnvironmentFile: filepath.Join(t.TempDir(), "missing", "environment")}
	env := make(map[string]string)

	app := NewForPlatform(cfg, provision.PlatformLinux, zaptest.NewLogger(t), recordingSetenv(env))
	report, err := app.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error for unwritable environment file")
	}

	// process phase completed before the persistence fault
	if len(env) != vars.Default().Len() {
		t.Fatalf("expected process phase complete, got %d variables", len(env))
	}
	if report.Applied(provision.PhasePersist) != 0 {
		t.Fatalf("expected no persisted entries, got %d", report.Applied(provision.PhasePersist))
	}
}
