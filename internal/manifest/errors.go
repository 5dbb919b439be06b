package manifest

import "errors"

var (
	// ErrUnsupportedFormat is returned for files that are not YAML, JSON or XLSX.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
	// ErrMissingColumn is returned when a spreadsheet lacks a required column.
	ErrMissingColumn = errors.New("manifest is missing a required column")
	// ErrInvalidRow is returned when a spreadsheet cell cannot be parsed.
	ErrInvalidRow = errors.New("invalid manifest row")
)
