package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/simpleidserver/envprovision/internal/vars"
)

const defaultEnvironmentFile = "/etc/environment"

// Persister writes one variable to the platform's persistent store.
type Persister interface {
	// Persist applies a single entry. The applied flag reports whether a
	// store was actually written, so no-op backends stay out of the report.
	Persist(ctx context.Context, entry vars.Entry) (applied bool, err error)
	// Target names the store written to, for progress logging.
	Target() string
}

// CommandRunner executes an external command and returns an error when the
// command cannot be spawned or exits non-zero.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// SetxPersister writes machine-scope environment variables on Windows by
// invoking setx with the /M switch, one invocation per entry. Machine scope
// requires an elevated shell; setx reports the failure through its exit code.
type SetxPersister struct {
	executable string
	run        CommandRunner
}

// NewSetxPersister builds a persister around the given setx executable.
// An empty executable falls back to "setx" resolved through PATH.
func NewSetxPersister(executable string) *SetxPersister {
	if executable == "" {
		executable = "setx"
	}
	return &SetxPersister{executable: executable, run: runCommand}
}

// Persist runs one setx invocation for the entry.
func (p *SetxPersister) Persist(ctx context.Context, entry vars.Entry) (bool, error) {
	if err := p.run(ctx, p.executable, entry.Name, entry.Value, "/M"); err != nil {
		return false, err
	}
	return true, nil
}

// Target implements Persister.
func (p *SetxPersister) Target() string {
	return "machine environment (setx /M)"
}

// EnvFilePersister appends NAME="VALUE" lines to the system environment
// file on Linux. Values are written verbatim: a value containing a double
// quote produces a syntactically invalid file. That matches the historical
// behavior of this tool and is deliberately not corrected here.
type EnvFilePersister struct {
	path string
}

// NewEnvFilePersister builds a persister appending to the given file.
// An empty path falls back to /etc/environment.
func NewEnvFilePersister(path string) *EnvFilePersister {
	if path == "" {
		path = defaultEnvironmentFile
	}
	return &EnvFilePersister{path: path}
}

// Persist appends one line for the entry. The file is opened in append mode
// so existing content is preserved; repeated runs accumulate duplicate lines.
func (p *EnvFilePersister) Persist(_ context.Context, entry vars.Entry) (bool, error) {
	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s=\"%s\"\n", entry.Name, entry.Value); err != nil {
		return false, fmt.Errorf("append to %s: %w", p.path, err)
	}
	return true, nil
}

// Target implements Persister.
func (p *EnvFilePersister) Target() string {
	return p.path
}

// NoopPersister skips persistence entirely; used on unclassified platforms
// and for process-only or dry runs.
type NoopPersister struct{}

// Persist implements Persister without side effects.
func (NoopPersister) Persist(context.Context, vars.Entry) (bool, error) {
	return false, nil
}

// Target implements Persister.
func (NoopPersister) Target() string {
	return "none"
}
