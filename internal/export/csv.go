// package export serializes the result table to CSV, the only persisted
// output format, and parses it back.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mkravets/mr-insight-service/internal/domain"
)

var header = []string{
	"assignee", "mr_iid", "mr_title", "mr_url",
	"jira_key", "jira_summary", "score", "reason",
}

// WriteCSV writes rows with a header line. Absent key, summary and score
// serialize as empty cells.
func WriteCSV(w io.Writer, rows []domain.ResultRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		score := ""
		if row.Score != nil {
			score = strconv.FormatFloat(*row.Score, 'f', 2, 64)
		}

		record := []string{
			row.Assignee,
			strconv.Itoa(row.MRIID),
			row.MRTitle,
			row.MRURL,
			row.JiraKey,
			row.JiraSummary,
			score,
			row.Reason,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// ReadCSV parses a table produced by WriteCSV back into rows.
func ReadCSV(r io.Reader) ([]domain.ResultRow, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	if len(records[0]) != len(header) {
		return nil, fmt.Errorf("unexpected csv header: %v", records[0])
	}

	rows := make([]domain.ResultRow, 0, len(records)-1)

	for _, record := range records[1:] {
		iid, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("invalid mr_iid %q: %w", record[1], err)
		}

		row := domain.ResultRow{
			Assignee:    record[0],
			MRIID:       iid,
			MRTitle:     record[2],
			MRURL:       record[3],
			JiraKey:     record[4],
			JiraSummary: record[5],
			Reason:      record[7],
		}

		if record[6] != "" {
			score, err := strconv.ParseFloat(record[6], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid score %q: %w", record[6], err)
			}

			row.Score = &score
		}

		rows = append(rows, row)
	}

	return rows, nil
}
