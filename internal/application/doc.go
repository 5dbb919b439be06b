// Package application wires configuration into the running service: container
// presets, the branch-and-bound solver, the packing planner, Prometheus
// metrics, HTTP handlers and the server itself. The main package only parses
// flags and orchestrates startup and shutdown.
package application
