package compliance

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"policyportal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carer(name string) models.Profile {
	return models.Profile{ID: uuid.New(), Email: name + "@example.com", FullName: &name, Role: models.RoleCarer}
}

func doc(title string) models.Document {
	return models.Document{ID: uuid.New(), Title: title, Status: models.StatusPublished}
}

func read(d models.Document, p models.Profile) models.DocumentRead {
	return models.DocumentRead{ID: uuid.New(), DocumentID: d.ID, UserID: p.ID, ReadAt: time.Now()}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 100, Percent(0, 0))
	assert.Equal(t, 0, Percent(0, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 13, Percent(1, 8)) // 12.5 rounds up
	assert.Equal(t, 100, Percent(3, 3))
}

func TestAggregatePerCarer(t *testing.T) {
	alice := carer("alice")

	s := Aggregate([]models.Profile{alice}, nil, nil)
	assert.Equal(t, 100, s.Carers[0].Percent)

	docs := []models.Document{doc("A"), doc("B"), doc("C")}
	s = Aggregate([]models.Profile{alice}, docs, nil)
	assert.Equal(t, 0, s.Carers[0].Percent)

	reads := []models.DocumentRead{read(docs[0], alice), read(docs[1], alice)}
	s = Aggregate([]models.Profile{alice}, docs, reads)
	assert.Equal(t, 67, s.Carers[0].Percent)
	assert.Equal(t, 2, s.Carers[0].Read)
	assert.Equal(t, 3, s.Carers[0].Total)
	assert.Equal(t, 67, CarerPercent(alice.ID, docs, reads))
}

func TestAggregateIgnoresStaleAndDuplicateReads(t *testing.T) {
	alice, bob := carer("alice"), carer("bob")
	admin := models.Profile{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
	a, b := doc("A"), doc("B")
	archived := models.Document{ID: uuid.New(), Title: "Old", Status: models.StatusArchived}

	reads := []models.DocumentRead{
		read(a, alice),
		read(a, alice),
		read(archived, alice),
		read(archived, bob),
		read(a, admin),
		read(b, bob),
	}
	s := Aggregate([]models.Profile{alice, bob}, []models.Document{a, b}, reads)

	assert.Equal(t, 50, s.Carers[0].Percent)
	assert.Equal(t, 50, s.Carers[1].Percent)
	assert.Equal(t, 50, s.Documents[0].Percent)
	assert.Equal(t, 50, s.Documents[1].Percent)
	assert.Equal(t, 50, s.Overall)

	for _, c := range s.Carers {
		assert.LessOrEqual(t, c.Percent, 100)
	}
	for _, d := range s.Documents {
		assert.LessOrEqual(t, d.Percent, 100)
	}
}

func TestAggregateNoCarers(t *testing.T) {
	s := Aggregate(nil, []models.Document{doc("A")}, nil)
	assert.Equal(t, 100, s.Overall)
	require.Len(t, s.Documents, 1)
	assert.Equal(t, 100, s.Documents[0].Percent)
	assert.Empty(t, s.Carers)
}

func TestReportCSV(t *testing.T) {
	alice, bob := carer("alice"), carer("bob")
	policy := doc("Medication, storage")
	r := read(policy, alice)
	r.ReadAt = time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)
	passed, score := true, 4
	r.QuizPassed, r.QuizScore = &passed, &score

	rows := ReportRows([]models.Profile{alice, bob}, []models.Document{policy}, []models.DocumentRead{r})
	require.Len(t, rows, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ReportHeader, records[0])
	assert.Equal(t, []string{"alice", "alice@example.com", "Medication, storage", "Yes", "07/03/2025", "Yes", "4"}, records[1])
	assert.Equal(t, []string{"bob", "bob@example.com", "Medication, storage", "No", "", "N/A", "N/A"}, records[2])
}

func TestReportRowWithoutQuizData(t *testing.T) {
	row := ReportRow{CarerEmail: "x@example.com", Document: "D", Read: true, ReadAt: ptrTime(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))}
	assert.Equal(t, []string{"", "x@example.com", "D", "Yes", "31/12/2024", "N/A", "N/A"}, row.Record())
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "compliance-report-2025-01-09.csv", ReportFileName(time.Date(2025, 1, 9, 23, 0, 0, 0, time.UTC)))
}

func ptrTime(t time.Time) *time.Time { return &t }
