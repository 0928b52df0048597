package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"policyportal/database"
	"policyportal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh in-memory SQLite database with all tables migrated.
func DB(tb testing.TB) database.DbInstance {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s-%s?mode=memory&cache=shared", name, uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.RunMigrations(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return database.DbInstance{Db: db}
}

func SeedProfile(tb testing.TB, db database.DbInstance, role, email, name string) models.Profile {
	tb.Helper()
	p := models.Profile{Email: email, Role: role}
	if name != "" {
		p.FullName = &name
	}
	if err := db.Db.WithContext(context.Background()).Create(&p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedDocument(tb testing.TB, db database.DbInstance, title, status string, createdBy uuid.UUID) models.Document {
	tb.Helper()
	content := "Original text of " + title
	doc := models.Document{
		Title:           title,
		OriginalContent: &content,
		Status:          status,
		CreatedBy:       createdBy,
	}
	if err := db.CreateDocument(context.Background(), &doc); err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return doc
}

// SeedQuiz stores questions whose correct answers are the given indices.
func SeedQuiz(tb testing.TB, db database.DbInstance, documentID uuid.UUID, correct ...int) []models.QuizQuestion {
	tb.Helper()
	qs := make([]models.QuizQuestion, len(correct))
	for i, c := range correct {
		qs[i] = models.QuizQuestion{
			Question:     fmt.Sprintf("Question %d", i+1),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: c,
		}
	}
	saved, err := db.ReplaceQuiz(context.Background(), documentID, qs)
	if err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return saved
}

func SeedRead(tb testing.TB, db database.DbInstance, documentID, userID uuid.UUID) models.DocumentRead {
	tb.Helper()
	r := models.DocumentRead{DocumentID: documentID, UserID: userID, ReadAt: time.Now().UTC()}
	if err := db.RecordRead(context.Background(), r); err != nil {
		tb.Fatalf("seed read: %v", err)
	}
	return r
}

// Token signs an identity token for the given subject the way the identity provider does.
func Token(tb testing.TB, secret string, subject uuid.UUID) string {
	tb.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		tb.Fatalf("sign token: %v", err)
	}
	return signed
}
