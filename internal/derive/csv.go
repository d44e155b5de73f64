package derive

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"ledger/internal/core"
)

// CSVHeader is the first row of an export.
var CSVHeader = []string{"ID", "Type", "Amount", "Category", "Date", "Description", "Recurring"}

// Records renders transactions as export rows, header first. The values are
// unquoted; WriteCSV and the sheet exporter apply their own encoding.
func Records(transactions []core.Transaction) [][]string {
	rows := make([][]string, 0, len(transactions)+1)
	rows = append(rows, CSVHeader)
	for _, t := range transactions {
		recurring := "No"
		if t.Recurring {
			recurring = "Yes"
		}
		rows = append(rows, []string{
			t.ID,
			string(t.Kind),
			t.Amount.String(),
			t.Category,
			t.OccurredAt.UTC().Format(time.DateOnly),
			t.Description,
			recurring,
		})
	}
	return rows
}

// WriteCSV writes transactions as CSV. The description column is always
// quoted; other fields are quoted only when they need it.
func WriteCSV(w io.Writer, transactions []core.Transaction) error {
	bw := bufio.NewWriter(w)
	descCol := len(CSVHeader) - 2
	for i, row := range Records(transactions) {
		if i > 0 {
			bw.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				bw.WriteByte(',')
			}
			if i > 0 && j == descCol {
				bw.WriteString(quote(field))
			} else {
				bw.WriteString(escape(field))
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// CSVFileName is the download name for an export made at now.
func CSVFileName(now time.Time) string {
	return "local_ledger_transactions_" + now.Format("20060102") + ".csv"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func escape(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
