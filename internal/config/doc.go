// Package config resolves service settings: HTTP timeouts, rate limits,
// solver limits and extra container presets. Sources are layered as
// defaults, then environment variables (optionally seeded from a .env file),
// then a YAML file, then CLI flags.
package config
