// Package infra contains technical adapters such as metrics exporters,
// run-history stores and error reporting. These packages depend only on the
// interfaces defined in the core packages.
package infra
