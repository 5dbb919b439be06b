// Package manifest loads box lists from YAML, JSON and XLSX files.
package manifest
