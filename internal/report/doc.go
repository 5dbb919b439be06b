// Package report renders packing results as text tables, XLSX workbooks
// and go-echarts 3D pages.
package report
