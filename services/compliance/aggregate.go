// Package compliance computes read-completion percentages for carers,
// documents and the whole organisation.
package compliance

import (
	"math"

	"policyportal/models"

	"github.com/google/uuid"
)

type CarerProgress struct {
	Profile models.Profile `json:"profile"`
	Read    int            `json:"read"`
	Total   int            `json:"total"`
	Percent int            `json:"percent"`
}

type DocumentProgress struct {
	Document models.Document `json:"document"`
	Read     int             `json:"read"`
	Total    int             `json:"total"`
	Percent  int             `json:"percent"`
}

type Summary struct {
	Overall        int                `json:"overall"`
	CarerCount     int                `json:"carer_count"`
	PublishedCount int                `json:"published_count"`
	Carers         []CarerProgress    `json:"carers"`
	Documents      []DocumentProgress `json:"documents"`
}

type pair struct {
	doc, user uuid.UUID
}

// index holds the reads that count: one per (carer, published document).
type index struct {
	pairs   map[pair]models.DocumentRead
	perUser map[uuid.UUID]int
	perDoc  map[uuid.UUID]int
}

func buildIndex(carers []models.Profile, published []models.Document, reads []models.DocumentRead) index {
	carerSet := make(map[uuid.UUID]struct{}, len(carers))
	for _, c := range carers {
		carerSet[c.ID] = struct{}{}
	}
	docSet := make(map[uuid.UUID]struct{}, len(published))
	for _, d := range published {
		docSet[d.ID] = struct{}{}
	}

	idx := index{
		pairs:   map[pair]models.DocumentRead{},
		perUser: map[uuid.UUID]int{},
		perDoc:  map[uuid.UUID]int{},
	}
	for _, r := range reads {
		if _, ok := carerSet[r.UserID]; !ok {
			continue
		}
		if _, ok := docSet[r.DocumentID]; !ok {
			continue
		}
		k := pair{doc: r.DocumentID, user: r.UserID}
		if prev, seen := idx.pairs[k]; seen {
			if r.ReadAt.After(prev.ReadAt) {
				idx.pairs[k] = r
			}
			continue
		}
		idx.pairs[k] = r
		idx.perUser[r.UserID]++
		idx.perDoc[r.DocumentID]++
	}
	return idx
}

// Percent returns num/den as a rounded percentage. An empty denominator
// means nothing is outstanding, so it counts as complete.
func Percent(num, den int) int {
	if den <= 0 {
		return 100
	}
	return int(math.Round(float64(num) / float64(den) * 100))
}

// Aggregate computes every percentage shown on the reports pages. Reads of
// unpublished documents or by non-carers are ignored.
func Aggregate(carers []models.Profile, published []models.Document, reads []models.DocumentRead) Summary {
	idx := buildIndex(carers, published, reads)

	s := Summary{
		CarerCount:     len(carers),
		PublishedCount: len(published),
		Carers:         make([]CarerProgress, 0, len(carers)),
		Documents:      make([]DocumentProgress, 0, len(published)),
	}
	for _, c := range carers {
		n := idx.perUser[c.ID]
		s.Carers = append(s.Carers, CarerProgress{
			Profile: c,
			Read:    n,
			Total:   len(published),
			Percent: Percent(n, len(published)),
		})
	}
	for _, d := range published {
		n := idx.perDoc[d.ID]
		s.Documents = append(s.Documents, DocumentProgress{
			Document: d,
			Read:     n,
			Total:    len(carers),
			Percent:  Percent(n, len(carers)),
		})
	}
	s.Overall = Percent(len(idx.pairs), len(carers)*len(published))
	return s
}

// CarerPercent is the completion of a single carer, as shown on their home page.
func CarerPercent(userID uuid.UUID, published []models.Document, reads []models.DocumentRead) int {
	carer := []models.Profile{{ID: userID}}
	idx := buildIndex(carer, published, reads)
	return Percent(idx.perUser[userID], len(published))
}
