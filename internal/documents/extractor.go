// Package documents turns uploaded reference documents (scripts, SOPs,
// product sheets) into plain text for the analysis and chat prompts.
package documents

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"callinsight_backend/platform/apperr"
	"callinsight_backend/platform/sanitize"
)

// Format is the detected document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

var pdfMagic = []byte("%PDF-")

// Extractor converts document bytes into text.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Detect picks a format from the file extension, falling back to content
// sniffing for PDFs uploaded without one.
func Detect(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	case ".html", ".htm":
		return FormatHTML
	}
	if bytes.HasPrefix(data, pdfMagic) {
		return FormatPDF
	}
	return FormatText
}

// Extract returns the plain text of one document. Unreadable or binary input
// yields an apperr validation error.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.Validation("document is empty").WithOp("documents.Extract")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	format := Detect(filename, data)
	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatXLSX:
		text, err = extractXLSX(data)
	case FormatCSV:
		text, err = extractCSV(data)
	case FormatHTML:
		text, err = extractHTML(data)
	default:
		text, err = extractText(data)
	}
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", apperr.Wrap(apperr.KindValidation,
			fmt.Sprintf("could not read %s document", format), err).WithOp("documents.Extract")
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract pdf page %d: %w", i, err)
		}
		if content = sanitize.Text(content); content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// extractXLSX writes every sheet as a "Sheet: <name>" line followed by one
// tab-separated line per non-empty row.
func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Sheet: " + sheet + "\n")
		writeRows(&b, rows)
	}
	return strings.TrimSpace(b.String()), nil
}

func extractCSV(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errNotText
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse csv: %w", err)
		}
		rows = append(rows, record)
	}

	var b strings.Builder
	writeRows(&b, rows)
	return strings.TrimSpace(b.String()), nil
}

func extractHTML(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errNotText
	}
	return sanitize.StripHTML(string(data)), nil
}

var errNotText = apperr.Validation("document is not a supported format or UTF-8 text")

func extractText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", errNotText
	}
	return strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n")), nil
}

func writeRows(b *strings.Builder, rows [][]string) {
	for _, row := range rows {
		line := strings.TrimRight(strings.Join(row, "\t"), "\t ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// Clip limits text to limit characters. A non-positive limit disables it.
func Clip(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:limit]), true
}
