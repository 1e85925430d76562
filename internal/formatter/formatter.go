// package formatter renders history records for terminal output and export files (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/shared"
)

// ToCSV converts history records to CSV with columns: ID, Title, Status, Season, Episode, Source, Message, Updated
func ToCSV(records []models.HistoryRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Status", "Season", "Episode", "Source", "Message", "Updated"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.Title,
			string(rec.Status),
			ordinal(rec.Season),
			ordinal(rec.Episode),
			string(rec.Source),
			rec.Message,
			rec.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown converts a history page to a Markdown table
func ToMarkdown(page *models.HistoryPage) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# History\n\n")
	buf.WriteString(fmt.Sprintf("**Records**: %d of %d\n\n", len(page.Records), page.Total))

	buf.WriteString("| # | Title | Status | Episode | Source | Message |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, rec := range page.Records {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			rec.DisplayID, rec.Title, rec.Status, episodeLabel(rec), rec.Source, rec.Message))
	}

	return buf.Bytes(), nil
}

// ToTable converts a history page to an aligned text table for terminal display
func ToTable(page *models.HistoryPage) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "#\tTITLE\tSTATUS\tEPISODE\tSOURCE\tMESSAGE")
	for _, rec := range page.Records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			rec.DisplayID, rec.Title, rec.Status, episodeLabel(rec), rec.Source, rec.Message)
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush table: %w", err)
	}

	buf.WriteString(fmt.Sprintf("\n%d of %d records\n", len(page.Records), page.Total))

	return buf.Bytes(), nil
}

// ToJSON generates an indented JSON representation of a history page
func ToJSON(page *models.HistoryPage) ([]byte, error) {
	return shared.MarshalJSON(page, true)
}

// WriteCSVExport writes history records as CSV to the given path.
//
// Defaults to history.csv when no path is given and returns the path written.
func WriteCSVExport(records []models.HistoryRecord, filepath string) (string, error) {
	if filepath == "" {
		filepath = "history.csv"
	}

	data, err := ToCSV(records)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteBlob writes a raw server export blob to the given path.
//
// Defaults to history_export.txt when no path is given and returns the path written.
func WriteBlob(blob []byte, filepath string) (string, error) {
	if filepath == "" {
		filepath = "history_export.txt"
	}

	if err := os.WriteFile(filepath, blob, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return filepath, nil
}

// episodeLabel renders SxxEyy for records with parsed numbering, blank otherwise
func episodeLabel(rec models.HistoryRecord) string {
	if rec.Season == nil || rec.Episode == nil {
		return ""
	}
	return fmt.Sprintf("S%02dE%02d", *rec.Season, *rec.Episode)
}

func ordinal(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
