// Package provision applies a set of environment variables to the current
// process and to the host's persistent environment store. Persistence is
// dispatched through a small Persister capability: setx in machine scope on
// Windows, appending to the system environment file on Linux, and a no-op
// everywhere else. The process-scope mutation function is injectable so the
// whole run can be exercised without touching the real environment.
package provision
