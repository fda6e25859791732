// Package application provides application initialization and dependency
// wiring. It resolves the variable set from configuration, selects the
// persistence backend for the host platform, and drives the provisioner,
// keeping the main package focused on CLI parsing and orchestration.
package application
