// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a log-capturing slog handler and energy
// fixtures (raw OWID rows, CSV bodies, built summaries) shared by tests of the
// normalizer, the row sources, the stores and the query service.
package shared
