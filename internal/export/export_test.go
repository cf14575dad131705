package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"taskboard/internal/models"
)

func sampleTasks(t *testing.T) []models.Task {
	t.Helper()
	first := models.NewTask("a1")
	first.SetString(models.FieldTitle, "Write report")
	first.SetString(models.FieldStatus, "todo")
	first.SetString(models.FieldPriority, "high")
	first.SetString(models.FieldDueDate, "2026-06-01")

	second := models.NewTask("b2")
	second.SetString(models.FieldTitle, "Review, then merge")
	second.SetString(models.FieldStatus, "done")
	if err := second.Set("tags", []string{"x"}); err != nil {
		t.Fatalf("failed to set tags: %v", err)
	}

	return []models.Task{first, second}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatJSON},
		{input: "json", want: FormatJSON},
		{input: "CSV", want: FormatCSV},
		{input: " pdf ", want: FormatPDF},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWrite_JSONKeepsAllFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sampleTasks(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if _, ok := got[1]["tags"]; !ok {
		t.Error("expected custom field to be exported")
	}
}

func TestWrite_JSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, sampleTasks(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := "id,title,description,status,priority,dueDate,createdAt\n" +
		"a1,Write report,,todo,high,2026-06-01,\n" +
		"b2,\"Review, then merge\",,done,,,\n"
	if buf.String() != want {
		t.Errorf("unexpected csv:\nwant %q\ngot  %q", want, buf.String())
	}
}

func TestWrite_PDF(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatPDF, sampleTasks(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestContentTypeAndFilename(t *testing.T) {
	tests := []struct {
		format      Format
		contentType string
		filename    string
	}{
		{FormatJSON, "application/json", "tasks.json"},
		{FormatCSV, "text/csv", "tasks.csv"},
		{FormatPDF, "application/pdf", "tasks.pdf"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := ContentType(tt.format); got != tt.contentType {
				t.Errorf("expected %q, got %q", tt.contentType, got)
			}
			if got := Filename(tt.format); got != tt.filename {
				t.Errorf("expected %q, got %q", tt.filename, got)
			}
		})
	}
}
