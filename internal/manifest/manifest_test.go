package manifest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
)

var sampleBoxes = []geometry.Box{
	{ID: "A", Length: 40, Width: 40, Height: 40, Weight: 10, MustPack: true},
	{ID: "B", Length: 50, Width: 50, Height: 20, Weight: 8},
	{Length: 30, Width: 30, Height: 30.5, Weight: 5},
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		input  string
		want   *Manifest
	}{
		{
			name:   "YAMLDocument",
			format: FormatYAML,
			input: `
uld: pmc
objective: weight
boxes:
  - {id: A, length: 40, width: 40, height: 40, weight: 10, must_pack: true}
  - {id: B, length: 50, width: 50, height: 20, weight: 8}
  - {length: 30, width: 30, height: 30.5, weight: 5}
`,
			want: &Manifest{ULD: "pmc", Objective: "weight", Boxes: sampleBoxes},
		},
		{
			name:   "YAMLList",
			format: FormatYAML,
			input: `
- {id: A, length: 40, width: 40, height: 40, weight: 10, must_pack: true}
- {id: B, length: 50, width: 50, height: 20, weight: 8}
- {length: 30, width: 30, height: 30.5, weight: 5}
`,
			want: &Manifest{Boxes: sampleBoxes},
		},
		{
			name:   "JSONDocument",
			format: FormatJSON,
			input: `{"container": {"length": 100, "width": 100, "height": 100},
				"boxes": [{"id": "A", "length": 40, "width": 40, "height": 40, "weight": 10, "mustPack": true}]}`,
			want: &Manifest{
				Container: &geometry.Container{Length: 100, Width: 100, Height: 100},
				Boxes:     sampleBoxes[:1],
			},
		},
		{
			name:   "JSONList",
			format: FormatJSON,
			input:  ` [{"id": "B", "length": 50, "width": 50, "height": 20, "weight": 8}]`,
			want:   &Manifest{Boxes: sampleBoxes[1:2]},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(strings.NewReader(tc.input), tc.format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleBoxes); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	got, err := Decode(&buf, FormatXLSX)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if diff := cmp.Diff(sampleBoxes, got.Boxes); diff != "" {
		t.Fatalf("boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestReadXLSXErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rows    [][]any
		wantErr error
	}{
		{
			name:    "MissingHeight",
			rows:    [][]any{{"id", "length", "width"}, {"a", 1, 2}},
			wantErr: ErrMissingColumn,
		},
		{
			name:    "NotANumber",
			rows:    [][]any{{"length", "width", "height"}, {1, "wide", 3}},
			wantErr: ErrInvalidRow,
		},
		{
			name:    "BadFlag",
			rows:    [][]any{{"length", "width", "height", "priority"}, {1, 2, 3, "maybe"}},
			wantErr: ErrInvalidRow,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ReadXLSX(workbook(t, tc.rows))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestReadXLSXPriorityColumnAndBlankRows(t *testing.T) {
	t.Parallel()

	boxes, err := ReadXLSX(workbook(t, [][]any{
		{"Length", "Width", "Height", "Priority"},
		{1, 2, 3, "yes"},
		{"", "", "", ""},
		{4, 5, 6, ""},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []geometry.Box{
		{Length: 1, Width: 2, Height: 3, MustPack: true},
		{Length: 4, Width: 5, Height: 6},
	}
	if diff := cmp.Diff(want, boxes); diff != "" {
		t.Fatalf("boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPicksFormatByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "boxes.yml")
	if err := os.WriteFile(path, []byte("- {length: 1, width: 2, height: 3}\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Boxes) != 1 || m.Boxes[0].Height != 3 {
		t.Fatalf("unexpected boxes: %+v", m.Boxes)
	}

	if _, err := Load(filepath.Join(dir, "boxes.csv")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		row := row
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}
