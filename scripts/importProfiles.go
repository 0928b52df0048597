package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"policyportal/config"
	"policyportal/database"
	"policyportal/models"

	"github.com/google/uuid"
)

// Imports pre-provisioned profiles from a CSV with the columns
// id,email,full_name,role. Usage: go run ./scripts [profiles.csv]
func main() {
	// Load config and connect to database
	config.LoadConfig()
	if err := database.ConnectDb(config.AppConfig); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	path := "profiles.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	counts, err := importProfiles(context.Background(), database.Database, file)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import completed: %d inserted, %d updated, %d skipped", counts.inserted, counts.updated, counts.skipped)
}

type profileUpserter interface {
	UpsertProfile(ctx context.Context, p models.Profile) (bool, error)
}

type importCounts struct {
	inserted, updated, skipped int
}

func importProfiles(ctx context.Context, db profileUpserter, r io.Reader) (importCounts, error) {
	var counts importCounts

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return counts, fmt.Errorf("read CSV: %w", err)
	}
	if len(records) < 2 {
		return counts, fmt.Errorf("CSV file is empty or has only headers")
	}

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"id", "email", "role"} {
		if _, ok := headerIndex[col]; !ok {
			return counts, fmt.Errorf("missing column %q", col)
		}
	}

	for i, row := range records[1:] {
		p, err := parseProfile(row, headerIndex)
		if err != nil {
			log.Printf("Skipping row %d: %v", i+2, err)
			counts.skipped++
			continue
		}

		created, err := db.UpsertProfile(ctx, p)
		if err != nil {
			log.Printf("Error saving row %d (%s): %v", i+2, p.Email, err)
			counts.skipped++
			continue
		}
		if created {
			counts.inserted++
		} else {
			counts.updated++
		}
	}
	return counts, nil
}

func parseProfile(row []string, headerIndex map[string]int) (models.Profile, error) {
	id, err := uuid.Parse(getField(row, headerIndex, "id"))
	if err != nil {
		return models.Profile{}, fmt.Errorf("invalid id: %w", err)
	}
	email := strings.ToLower(getField(row, headerIndex, "email"))
	if email == "" || !strings.Contains(email, "@") {
		return models.Profile{}, fmt.Errorf("invalid email %q", email)
	}
	role := strings.ToLower(getField(row, headerIndex, "role"))
	if role != models.RoleAdmin && role != models.RoleCarer {
		return models.Profile{}, fmt.Errorf("invalid role %q", role)
	}

	p := models.Profile{ID: id, Email: email, Role: role}
	if name := getField(row, headerIndex, "full_name"); name != "" {
		p.FullName = &name
	}
	return p, nil
}

func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
