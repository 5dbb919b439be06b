// Package metrics exposes model-build, solver and HTTP observations as
// Prometheus collectors.
package metrics
