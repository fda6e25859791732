// Package vars holds the embedded set of environment variables the
// provisioner applies: identity-server database credentials, certificate
// paths, and connection strings. The set is an ordered name/value table
// with last-write-wins semantics for duplicate names.
package vars
