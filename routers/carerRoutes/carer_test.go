package carerRoutes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	carerControllers "policyportal/controllers/carer"
	"policyportal/database"
	"policyportal/middleware"
	"policyportal/models"
	"policyportal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

type testEnv struct {
	app   *fiber.App
	db    database.DbInstance
	admin models.Profile
	carer models.Profile
	token string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	admin := testutil.SeedProfile(t, db, models.RoleAdmin, "admin@example.com", "Admin")
	carer := testutil.SeedProfile(t, db, models.RoleCarer, "carer@example.com", "Carer")

	app := fiber.New()
	SetupCarerRoutes(app, middleware.JWTMiddleware(secret, "", db), &carerControllers.Handler{DB: db, Log: zap.NewNop()})

	return &testEnv{app: app, db: db, admin: admin, carer: carer, token: testutil.Token(t, secret, carer.ID)}
}

func (e *testEnv) call(t *testing.T, method, path string, payload any) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func (e *testEnv) reads(t *testing.T, docID uuid.UUID) []models.DocumentRead {
	t.Helper()
	reads, err := e.db.ListReadsForDocument(context.Background(), docID)
	require.NoError(t, err)
	return reads
}

func TestCarerRoutesRequireCarer(t *testing.T) {
	e := newEnv(t)
	e.token = testutil.Token(t, secret, e.admin.ID)

	status, _ := e.call(t, "GET", "/carer/documents", nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestListDocumentsSplitsReadAndUnread(t *testing.T) {
	e := newEnv(t)
	read := testutil.SeedDocument(t, e.db, "Alpha", models.StatusPublished, e.admin.ID)
	testutil.SeedDocument(t, e.db, "Beta", models.StatusPublished, e.admin.ID)
	testutil.SeedDocument(t, e.db, "Gamma", models.StatusPublished, e.admin.ID)
	testutil.SeedDocument(t, e.db, "Hidden draft", models.StatusDraft, e.admin.ID)
	testutil.SeedRead(t, e.db, read.ID, e.carer.ID)

	status, resp := e.call(t, "GET", "/carer/documents", nil)
	require.Equal(t, fiber.StatusOK, status)

	data := resp["data"].(map[string]any)
	assert.Len(t, data["unread"], 2)
	readList := data["read"].([]any)
	require.Len(t, readList, 1)
	assert.Equal(t, "Alpha", readList[0].(map[string]any)["title"])
	assert.EqualValues(t, 33, data["percent"])
}

func TestListDocumentsWithNothingPublished(t *testing.T) {
	e := newEnv(t)

	status, resp := e.call(t, "GET", "/carer/documents", nil)
	require.Equal(t, fiber.StatusOK, status)
	data := resp["data"].(map[string]any)
	assert.Empty(t, data["unread"])
	assert.EqualValues(t, 100, data["percent"])
}

func TestGetDocumentHidesAnswers(t *testing.T) {
	e := newEnv(t)
	doc := testutil.SeedDocument(t, e.db, "Medication", models.StatusPublished, e.admin.ID)
	enhanced := "Enhanced medication text"
	_, err := e.db.UpdateDocument(context.Background(), doc.ID, map[string]interface{}{"enhanced_content": enhanced})
	require.NoError(t, err)
	testutil.SeedQuiz(t, e.db, doc.ID, 3, 1)

	status, resp := e.call(t, "GET", "/carer/documents/"+doc.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)

	data := resp["data"].(map[string]any)
	assert.Equal(t, true, data["has_quiz"])
	assert.Equal(t, false, data["already_read"])
	document := data["document"].(map[string]any)
	assert.Equal(t, enhanced, document["content"])
	assert.Equal(t, "Original text of Medication", document["original_content"])

	questions := data["questions"].([]any)
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.NotContains(t, q.(map[string]any), "correct_index")
	}
}

func TestGetDocumentOnlyPublished(t *testing.T) {
	e := newEnv(t)
	draft := testutil.SeedDocument(t, e.db, "Draft", models.StatusDraft, e.admin.ID)

	status, _ := e.call(t, "GET", "/carer/documents/"+draft.ID.String(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = e.call(t, "POST", "/carer/documents/"+draft.ID.String()+"/confirm", map[string]bool{"acknowledged": true})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Empty(t, e.reads(t, draft.ID))
}

func TestConfirmRead(t *testing.T) {
	e := newEnv(t)
	doc := testutil.SeedDocument(t, e.db, "Code of Conduct", models.StatusPublished, e.admin.ID)
	path := "/carer/documents/" + doc.ID.String() + "/confirm"

	status, _ := e.call(t, "POST", path, map[string]bool{"acknowledged": false})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Empty(t, e.reads(t, doc.ID))

	status, resp := e.call(t, "POST", path, map[string]bool{"acknowledged": true})
	require.Equal(t, fiber.StatusOK, status, resp)
	assert.Equal(t, "confirmed", resp["data"].(map[string]any)["state"])

	status, _ = e.call(t, "POST", path, map[string]bool{"acknowledged": true})
	require.Equal(t, fiber.StatusOK, status)

	reads := e.reads(t, doc.ID)
	require.Len(t, reads, 1)
	assert.Nil(t, reads[0].QuizPassed)
	assert.Nil(t, reads[0].QuizScore)

	status, resp = e.call(t, "GET", "/carer/documents/"+doc.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, resp["data"].(map[string]any)["already_read"])
}

func TestConfirmRejectedWhenQuizExists(t *testing.T) {
	e := newEnv(t)
	doc := testutil.SeedDocument(t, e.db, "Safeguarding", models.StatusPublished, e.admin.ID)
	testutil.SeedQuiz(t, e.db, doc.ID, 0)

	status, _ := e.call(t, "POST", "/carer/documents/"+doc.ID.String()+"/confirm", map[string]bool{"acknowledged": true})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Empty(t, e.reads(t, doc.ID))
}

func TestSubmitQuiz(t *testing.T) {
	e := newEnv(t)
	doc := testutil.SeedDocument(t, e.db, "Safeguarding", models.StatusPublished, e.admin.ID)
	qs := testutil.SeedQuiz(t, e.db, doc.ID, 1, 2, 0)
	path := "/carer/documents/" + doc.ID.String() + "/quiz"

	// incomplete
	status, _ := e.call(t, "POST", path, map[string]any{"answers": map[string]int{qs[0].ID.String(): 1}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	// one wrong answer: scored, nothing stored, retry offered
	status, resp := e.call(t, "POST", path, map[string]any{"answers": map[string]int{
		qs[0].ID.String(): 1,
		qs[1].ID.String(): 3,
		qs[2].ID.String(): 0,
	}})
	require.Equal(t, fiber.StatusOK, status, resp)
	data := resp["data"].(map[string]any)
	assert.Equal(t, false, data["passed"])
	assert.Equal(t, true, data["retry"])
	assert.EqualValues(t, 2, data["score"])
	assert.EqualValues(t, 3, data["total"])
	assert.Equal(t, false, data["results"].(map[string]any)[qs[1].ID.String()])
	assert.Empty(t, e.reads(t, doc.ID))

	// all correct
	status, resp = e.call(t, "POST", path, map[string]any{"answers": map[string]int{
		qs[0].ID.String(): 1,
		qs[1].ID.String(): 2,
		qs[2].ID.String(): 0,
	}})
	require.Equal(t, fiber.StatusOK, status, resp)
	data = resp["data"].(map[string]any)
	assert.Equal(t, true, data["passed"])
	assert.NotContains(t, data, "retry")

	reads := e.reads(t, doc.ID)
	require.Len(t, reads, 1)
	require.NotNil(t, reads[0].QuizPassed)
	assert.True(t, *reads[0].QuizPassed)
	require.NotNil(t, reads[0].QuizScore)
	assert.Equal(t, 3, *reads[0].QuizScore)
}

func TestSubmitQuizValidation(t *testing.T) {
	e := newEnv(t)
	doc := testutil.SeedDocument(t, e.db, "Safeguarding", models.StatusPublished, e.admin.ID)
	qs := testutil.SeedQuiz(t, e.db, doc.ID, 1)
	path := "/carer/documents/" + doc.ID.String() + "/quiz"

	status, _ := e.call(t, "POST", path, map[string]any{"answers": map[string]int{qs[0].ID.String(): 7}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = e.call(t, "POST", path, map[string]any{"answers": map[string]int{"q1": 0}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	plain := testutil.SeedDocument(t, e.db, "No quiz", models.StatusPublished, e.admin.ID)
	status, _ = e.call(t, "POST", "/carer/documents/"+plain.ID.String()+"/quiz",
		map[string]any{"answers": map[string]int{uuid.NewString(): 0}})
	assert.Equal(t, fiber.StatusConflict, status)
}
