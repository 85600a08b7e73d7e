package http

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/classtally/classtally/internal/scoring"
)

// ExportOverviewCSVHandler flattens the activity-score pivot into CSV, one
// column per date label plus a total, matching the score overview table.
func ExportOverviewCSVHandler(agg *scoring.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, dates, err := agg.Pivot(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="score_overview_activity_by_date.csv"`)

		cw := csv.NewWriter(w)
		header := make([]string, 0, len(dates)+2)
		header = append(header, "Student ID")
		for _, d := range dates {
			header = append(header, d+"-activity1")
		}
		header = append(header, "Total Score")
		_ = cw.Write(header)

		for _, row := range rows {
			rec := make([]string, 0, len(dates)+2)
			rec = append(rec, row.StudentID)
			for _, d := range dates {
				rec = append(rec, strconv.FormatFloat(row.ByDate[d], 'f', 2, 64))
			}
			rec = append(rec, strconv.FormatFloat(row.Total, 'f', 2, 64))
			_ = cw.Write(rec)
		}
		cw.Flush()
	}
}
