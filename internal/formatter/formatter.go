// package formatter provides functions to export notes to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"webdeck/internal/models"
)

const timeLayout = time.RFC3339

// ExportToCSV converts notes to CSV format with columns: ID, Session, Body, CreatedAt, UpdatedAt
func ExportToCSV(notes []*models.Note) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Sequence", "Session", "Body", "CreatedAt", "UpdatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, note := range notes {
		record := []string{
			note.ID(),
			strconv.Itoa(note.Sequence()),
			note.SessionID(),
			note.Body(),
			note.CreatedAt().Format(timeLayout),
			note.UpdatedAt().Format(timeLayout),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts notes to a Markdown document, newest first.
func ExportToMarkdown(notes []*models.Note) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Session Notes\n\n")
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(notes)))

	for _, note := range notes {
		buf.WriteString(fmt.Sprintf("## %s\n\n", note.CreatedAt().Format(timeLayout)))
		buf.WriteString(fmt.Sprintf("*Session `%s`*\n\n", note.SessionID()))
		buf.WriteString(note.Body())
		buf.WriteString("\n\n")
	}

	return buf.Bytes()
}

// ExportToText converts notes to plain text format, one block per note.
func ExportToText(notes []*models.Note) []byte {
	var buf bytes.Buffer

	for i, note := range notes {
		if i > 0 {
			buf.WriteString("\n---\n")
		}
		buf.WriteString(fmt.Sprintf("[%s] session %s\n", note.CreatedAt().Format(timeLayout), note.SessionID()))
		buf.WriteString(note.Body())
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// Export dispatches to the requested format: "csv", "markdown", or "txt".
func Export(notes []*models.Note, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(notes)
	case "markdown", "md":
		return ExportToMarkdown(notes), nil
	case "txt", "text", "":
		return ExportToText(notes), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}
