// Package report renders an evaluated sweep into the artifacts the design
// team consumes: a CSV/XLSX results table, a JSON dump for downstream
// tooling and a short PDF summary. Undefined bandgaps render as empty
// cells, never as zeros.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/latticedyn/hexsweep/engine/optimize"
	"github.com/latticedyn/hexsweep/engine/sweep"
)

// Columns is the tabular layout shared by the CSV and XLSX emitters.
var Columns = []string{
	"beta", "theta_deg",
	"max_stress", "safety_factor", "load_factor", "critical_load",
	"first_mode_hz", "bandgap_onset_hz", "bandgap_width_hz", "bandgap_count",
	"feasible", "score", "failed", "fail_reason",
}

// row flattens one record into the Columns layout.
func row(r *sweep.Record) []string {
	out := make([]string, len(Columns))
	out[0] = fmt.Sprintf("%g", r.Config.Beta)
	out[1] = fmt.Sprintf("%g", r.Config.ThetaDeg)
	if m := r.Metrics; m != nil {
		out[2] = fmt.Sprintf("%g", m.MaxStress)
		out[3] = fmt.Sprintf("%g", m.SafetyFactor)
		out[4] = fmt.Sprintf("%g", m.LoadFactor)
		out[5] = fmt.Sprintf("%g", m.CriticalLoad)
		out[6] = fmt.Sprintf("%g", m.FirstModeHz)
		if m.Bandgap != nil {
			out[7] = fmt.Sprintf("%g", m.Bandgap.OnsetHz)
			out[8] = fmt.Sprintf("%g", m.Bandgap.WidthHz)
		}
		out[9] = fmt.Sprintf("%d", len(m.Bandgaps))
	}
	out[10] = fmt.Sprintf("%t", r.Feasible)
	out[11] = fmt.Sprintf("%g", r.Score)
	out[12] = fmt.Sprintf("%t", r.Failed)
	out[13] = r.FailReason
	return out
}

// WriteCSV emits the results table, one row per sweep point in sweep order.
func WriteCSV(w io.Writer, out optimize.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range out.Records {
		if err := cw.Write(row(&out.Records[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON emits the full annotated outcome.
func WriteJSON(w io.Writer, out optimize.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteXLSX emits the results workbook: the same table as WriteCSV on a
// "Sweep" sheet, with the winner called out on a "Best" sheet.
func WriteXLSX(w io.Writer, out optimize.Outcome) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sweep"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, Columns); err != nil {
		return err
	}
	for i := range out.Records {
		if err := setRow(f, sheet, i+2, row(&out.Records[i])); err != nil {
			return err
		}
	}

	if out.Best != nil {
		if _, err := f.NewSheet("Best"); err != nil {
			return err
		}
		best := out.Best
		cells := [][]string{
			{"label", best.Label},
			{"beta", fmt.Sprintf("%g", best.Config.Beta)},
			{"theta_deg", fmt.Sprintf("%g", best.Config.ThetaDeg)},
			{"score", fmt.Sprintf("%g", best.Score)},
		}
		if best.Metrics != nil && best.Metrics.Bandgap != nil {
			g := best.Metrics.Bandgap
			cells = append(cells,
				[]string{"bandgap_onset_hz", fmt.Sprintf("%g", g.OnsetHz)},
				[]string{"bandgap_width_hz", fmt.Sprintf("%g", g.WidthHz)},
			)
		}
		for i, pair := range cells {
			if err := setRow(f, "Best", i+1, pair); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, rowIdx int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// WritePDF emits a one-page summary: sweep totals, the winning design and
// the top-scoring feasible points.
func WritePDF(w io.Writer, out optimize.Outcome) error {
	feasible := 0
	for i := range out.Records {
		if out.Records[i].Feasible {
			feasible++
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Honeycomb Lattice Design Sweep")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Design points: %d   Feasible: %d", len(out.Records), feasible))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	if best := out.Best; best != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Best design: %s (score %.3f)", best.Label, best.Score))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		if m := best.Metrics; m != nil {
			pdf.Cell(0, 6, fmt.Sprintf("Safety factor %.2f, buckling load factor %.2f", m.SafetyFactor, m.LoadFactor))
			pdf.Ln(6)
			if m.Bandgap != nil {
				pdf.Cell(0, 6, fmt.Sprintf("Bandgap %.0f-%.0f Hz (width %.0f Hz)", m.Bandgap.OnsetHz, m.Bandgap.EndHz, m.Bandgap.WidthHz))
				pdf.Ln(6)
			}
		}
	} else {
		pdf.Cell(0, 8, "No feasible design in the swept range")
		pdf.Ln(8)
	}
	pdf.Ln(4)

	ranked := topFeasible(out.Records, 20)
	if len(ranked) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		widths := []float64{30, 20, 20, 35, 35, 20}
		headers := []string{"label", "beta", "theta", "gap onset Hz", "gap width Hz", "score"}
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, r := range ranked {
			onset, width := "-", "-"
			if r.Metrics != nil && r.Metrics.Bandgap != nil {
				onset = fmt.Sprintf("%.0f", r.Metrics.Bandgap.OnsetHz)
				width = fmt.Sprintf("%.0f", r.Metrics.Bandgap.WidthHz)
			}
			cells := []string{
				r.Label,
				fmt.Sprintf("%.4f", r.Config.Beta),
				fmt.Sprintf("%g", r.Config.ThetaDeg),
				onset,
				width,
				fmt.Sprintf("%.3f", r.Score),
			}
			for i, c := range cells {
				pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}
	return pdf.Output(w)
}

// topFeasible returns up to n feasible records by descending score.
func topFeasible(records []sweep.Record, n int) []*sweep.Record {
	var out []*sweep.Record
	for i := range records {
		if records[i].Feasible {
			out = append(out, &records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
