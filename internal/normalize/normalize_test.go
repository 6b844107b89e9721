package normalize

import (
	"errors"
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		mime     string
		want     Format
	}{
		{"report.pdf", "", FormatPDF},
		{"report.PDF", "", FormatPDF},
		{"notes.txt", "", FormatText},
		{"notes.md", "", FormatMarkdown},
		{"page.html", "", FormatHTML},
		{"data.csv", "", FormatCSV},
		{"doc.docx", "", FormatDOCX},
		{"sheet.xlsx", "", FormatXLSX},
		{"sheet.xls", "", FormatXLS},
		{"archive.zip", "", FormatUnsupported},
		{"download", "application/pdf", FormatPDF},
		{"download", "text/plain", FormatText},
		{"download", "application/octet-stream", FormatUnsupported},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.filename, tt.mime); got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %v, want %v", tt.filename, tt.mime, got, tt.want)
		}
	}
}

func TestNormalize_UnsupportedFormat(t *testing.T) {
	_, err := Normalize([]byte("data"), "archive.zip", "application/zip", Options{})
	var fmtErr *UnsupportedFormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestNormalize_PlainText(t *testing.T) {
	input := "First paragraph line one.\r\nFirst paragraph line two.\n\n\nSecond paragraph.\n"
	res, err := Normalize([]byte(input), "notes.txt", "text/plain", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph."
	if res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
	if res.Native {
		t.Error("plain text must not be tagged for native ingestion")
	}
}

func TestNormalize_PDFNativeIngestion(t *testing.T) {
	data := []byte("%PDF-1.4 fake")
	res, err := Normalize(data, "report.pdf", "application/pdf", Options{PDFNativeIngest: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Native {
		t.Fatal("expected native ingestion marker")
	}
	if res.BlobMIME != "application/pdf" {
		t.Errorf("expected blob mime application/pdf, got %q", res.BlobMIME)
	}
	if string(res.Blob) != string(data) {
		t.Error("blob must pass through the original bytes unchanged")
	}
}

func TestNormalize_CSV(t *testing.T) {
	input := "name,color\nsky,blue\ngrass,green\n"
	res, err := Normalize([]byte(input), "data.csv", "text/csv", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Text, "Headers: name, color") {
		t.Errorf("missing header line in %q", res.Text)
	}
	if !strings.Contains(res.Text, "name: sky, color: blue") {
		t.Errorf("missing labeled row in %q", res.Text)
	}
}

func TestNormalize_HTML(t *testing.T) {
	input := `<html><head><title>T</title><script>var x;</script></head>
<body><h1>Heading</h1><p>Body paragraph.</p><nav>menu</nav></body></html>`
	res, err := Normalize([]byte(input), "page.html", "text/html", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Text, "Heading") || !strings.Contains(res.Text, "Body paragraph.") {
		t.Errorf("missing content in %q", res.Text)
	}
	if strings.Contains(res.Text, "var x") {
		t.Errorf("script content leaked into %q", res.Text)
	}
	if strings.Contains(res.Text, "menu") {
		t.Errorf("nav content leaked into %q", res.Text)
	}
}

func TestNormalize_Markdown(t *testing.T) {
	input := "# Title\n\nSome body text here.\n\n## Sub\n\nMore text."
	res, err := Normalize([]byte(input), "notes.md", "text/markdown", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Title", "Some body text here.", "Sub", "More text."} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("missing %q in %q", want, res.Text)
		}
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	inputs := map[string]string{
		"notes.txt": "Alpha.\n\nBeta.\n\nGamma.",
		"data.csv":  "a,b\n1,2\n3,4",
		"notes.md":  "# H\n\ntext body",
	}
	for filename, input := range inputs {
		first, err := Normalize([]byte(input), filename, "", Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", filename, err)
		}
		second, err := Normalize([]byte(input), filename, "", Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", filename, err)
		}
		if first.Text != second.Text {
			t.Errorf("%s: same bytes produced different text", filename)
		}
	}
}

func TestSheetText(t *testing.T) {
	rows := [][]string{
		{"name", "qty"},
		{"", ""},
		{"bolt", "40"},
	}
	got := sheetText("Inventory", rows)
	want := "Sheet: Inventory\nname | qty\nbolt | 40"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSheetText_TrailingEmptyCells(t *testing.T) {
	rows := [][]string{
		{"name", "qty", ""},
		{"bolt", "", ""},
		{"", "", ""},
	}
	got := sheetText("Inventory", rows)
	want := "Sheet: Inventory\nname | qty\nbolt"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSheetText_EmptySheet(t *testing.T) {
	if got := sheetText("Empty", nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
