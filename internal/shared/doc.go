// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides the captured slog handler and the
// table file fixtures used by the package tests.
package shared
