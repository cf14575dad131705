// Package export writes task collections as JSON, CSV or PDF documents.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"taskboard/internal/models"
)

// Format is an export document type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// csvColumns are the task fields written to CSV, in order.
var csvColumns = []string{
	models.FieldID,
	models.FieldTitle,
	models.FieldDescription,
	models.FieldStatus,
	models.FieldPriority,
	models.FieldDueDate,
	models.FieldCreatedAt,
}

// ParseFormat resolves a format name. An empty name means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %s", s)
	}
}

// ContentType returns the MIME type for the format.
func ContentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Filename returns the download name for the format.
func Filename(f Format) string {
	return "tasks." + string(f)
}

// Write encodes tasks to w in the given format.
func Write(w io.Writer, f Format, tasks []models.Task) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, tasks)
	case FormatCSV:
		return writeCSV(w, tasks)
	case FormatPDF:
		return writePDF(w, tasks)
	default:
		return fmt.Errorf("unknown format %s", f)
	}
}

func writeJSON(w io.Writer, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

func writeCSV(w io.Writer, tasks []models.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	row := make([]string, len(csvColumns))
	for _, task := range tasks {
		for i, col := range csvColumns {
			row[i] = task.String(col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, tasks []models.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("%d tasks", len(tasks)))
	pdf.Ln(8)

	for _, task := range tasks {
		line := fmt.Sprintf("[%s] %s (%s)", task.Status().Label(), task.Title(), task.Priority().Label())
		if due := task.String(models.FieldDueDate); due != "" {
			line += " due " + due
		}
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	return pdf.Output(w)
}
