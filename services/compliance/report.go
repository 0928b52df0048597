package compliance

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"policyportal/models"
)

var ReportHeader = []string{"Carer Name", "Carer Email", "Document", "Read", "Read Date", "Quiz Passed", "Quiz Score"}

type ReportRow struct {
	CarerName  string
	CarerEmail string
	Document   string
	Read       bool
	ReadAt     *time.Time
	QuizPassed *bool
	QuizScore  *int
}

// ReportRows returns one row per (carer, published document) in the order the
// slices are given. Callers pass carers sorted by name and documents by title.
func ReportRows(carers []models.Profile, published []models.Document, reads []models.DocumentRead) []ReportRow {
	idx := buildIndex(carers, published, reads)

	rows := make([]ReportRow, 0, len(carers)*len(published))
	for _, c := range carers {
		name := ""
		if c.FullName != nil {
			name = *c.FullName
		}
		for _, d := range published {
			row := ReportRow{CarerName: name, CarerEmail: c.Email, Document: d.Title}
			if r, ok := idx.pairs[pair{doc: d.ID, user: c.ID}]; ok {
				readAt := r.ReadAt
				row.Read = true
				row.ReadAt = &readAt
				row.QuizPassed = r.QuizPassed
				row.QuizScore = r.QuizScore
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func (r ReportRow) Record() []string {
	read, readDate := "No", ""
	if r.Read {
		read = "Yes"
		if r.ReadAt != nil {
			readDate = r.ReadAt.Format("02/01/2006")
		}
	}
	passed, score := "N/A", "N/A"
	if r.QuizPassed != nil {
		passed = "No"
		if *r.QuizPassed {
			passed = "Yes"
		}
	}
	if r.QuizScore != nil {
		score = strconv.Itoa(*r.QuizScore)
	}
	return []string{r.CarerName, r.CarerEmail, r.Document, read, readDate, passed, score}
}

// WriteCSV writes the header and rows. Fields are quoted as needed, so titles
// containing commas or quotes survive.
func WriteCSV(w io.Writer, rows []ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReportFileName is the download name for a report generated on day.
func ReportFileName(day time.Time) string {
	return "compliance-report-" + day.Format("2006-01-02") + ".csv"
}
