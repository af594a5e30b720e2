package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symmetrixs/edaago/internal/ai"
	"github.com/symmetrixs/edaago/internal/detection"
	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/services/inspection"
	"github.com/symmetrixs/edaago/internal/services/notify"
	"github.com/symmetrixs/edaago/internal/services/photo"
	"github.com/symmetrixs/edaago/internal/services/report"
	"github.com/symmetrixs/edaago/internal/services/stats"
	"github.com/symmetrixs/edaago/internal/services/team"
	"github.com/symmetrixs/edaago/internal/services/users"
	"github.com/symmetrixs/edaago/internal/storage/storagetest"
	"github.com/symmetrixs/edaago/internal/store"
	"github.com/symmetrixs/edaago/internal/store/storetest"
	"github.com/symmetrixs/edaago/internal/utils"
)

const testSecret = "handler-secret"

type fakeDetector struct {
	healthErr error
}

func (d *fakeDetector) Detect(_ context.Context, ref detection.PhotoRef) detection.Outcome {
	c := detection.Catalog[detection.DefectCorrosion]
	return detection.Outcome{
		PhotoID:        ref.ID,
		Detections:     []detection.Box{{ClassName: detection.DefectCorrosion, Confidence: 0.91}},
		Finding:        c.Finding,
		Recommendation: c.Recommendation,
		DetectionCount: 1,
	}
}

func (d *fakeDetector) DetectBatch(ctx context.Context, refs []detection.PhotoRef, _ string) []detection.Outcome {
	out := make([]detection.Outcome, len(refs))
	for i, ref := range refs {
		out[i] = d.Detect(ctx, ref)
	}
	return out
}

func (d *fakeDetector) DetectFile(ctx context.Context, _ string, _ []byte) detection.Outcome {
	return d.Detect(ctx, detection.PhotoRef{})
}

func (d *fakeDetector) Health(context.Context) (map[string]interface{}, error) {
	if d.healthErr != nil {
		return nil, d.healthErr
	}
	return map[string]interface{}{"status": "ok"}, nil
}

func (d *fakeDetector) BaseURL() string { return "http://detector.test" }

type fakeConverter struct{}

func (fakeConverter) Convert(_ context.Context, docx []byte) ([]byte, error) {
	return append([]byte("%PDF-"), docx...), nil
}

type fakeGenerator struct{}

func (fakeGenerator) GenerateContent(context.Context, string) (string, error) {
	return "```json\n{\"findings\":\"Rust on shell\",\"recommendations\":\"Recoat\",\"ndt\":\"UT\"}\n```", nil
}

type env struct {
	t       *testing.T
	store   *store.GormStore
	blobs   *storagetest.Memory
	users   *users.Service
	handler http.Handler
	insp    *models.Inspection
	owner   *models.User
	admin   *models.User
}

func newEnv(t *testing.T, gen ai.Generator) *env {
	t.Helper()
	s := storetest.New(t)
	blobs := storagetest.NewMemory()
	notes := notify.New(s, nil)
	det := &fakeDetector{}
	usersSvc := users.NewService(s, testSecret)

	r := NewRouter(Deps{
		Store:          s,
		Users:          usersSvc,
		Inspections:    inspection.NewService(s),
		Reports:        report.NewService(s, blobs, fakeConverter{}, notes),
		Photos:         photo.NewService(s, det, blobs),
		Teams:          team.NewService(s, notes),
		Notifications:  notes,
		Stats:          stats.NewService(s),
		Summarizer:     ai.NewSummarizer(gen),
		Detector:       det,
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"*"},
		PublicBaseURL:  "https://eda.test",
	})

	insp, owner := storetest.Seed(t, s, "RPT-100", "2024-04-01")
	admin, err := usersSvc.CreateUser(t.Context(), users.CreateUserInput{
		Name: "Aisyah", Email: "admin@example.com", Password: "secret", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	return &env{t: t, store: s, blobs: blobs, users: usersSvc, handler: r.Handler(), insp: insp, owner: owner, admin: admin}
}

func (e *env) token(u *models.User, role string) string {
	e.t.Helper()
	tok, err := utils.GenerateToken(u, role, testSecret)
	require.NoError(e.t, err)
	return tok
}

func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) upload(path, token string, fields map[string]string, data []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", "signed.docx")
	require.NoError(e.t, err)
	_, err = part.Write(data)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	e := newEnv(t, nil)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/health", "", nil).Code)

	rec := e.do(http.MethodGet, "/vessel", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decode(t, rec), "detail")

	inspector := e.token(e.owner, models.RoleInspector)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/vessel/", inspector, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/admin/stats", inspector, nil).Code)

	rec = e.do(http.MethodGet, "/admin/stats", e.token(e.admin, models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total_inspections"])
}

func TestCORSCredentialsNeverWithWildcard(t *testing.T) {
	cases := []struct {
		name        string
		origins     []string
		origin      string
		credentials string
		allowOrigin string
	}{
		{"wildcard", []string{"*"}, "https://evil.example", "", "*"},
		{"listed origin", []string{"https://edaa.example"}, "https://edaa.example", "true", "https://edaa.example"},
		{"unlisted origin", []string{"https://edaa.example"}, "https://evil.example", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRouter(Deps{JWTSecret: testSecret, AllowedOrigins: tc.origins}).Handler()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.credentials, rec.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tc.allowOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": "new@example.com", "password": "pw", "username": "Farid",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "inspector", decode(t, rec)["role"])

	rec = e.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": "new@example.com", "password": "pw", "username": "Farid",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "new@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "new@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	tok, _ := body["access_token"].(string)
	require.NotEmpty(t, tok)

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "inspector", user["role"])
	assert.Equal(t, "Farid", user["name"])

	id := uint(user["id"].(float64))
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, fmt.Sprintf("/auth/profile/%d", id), tok, nil).Code)
	assert.Equal(t, http.StatusForbidden,
		e.do(http.MethodPut, fmt.Sprintf("/auth/profile/%d", e.owner.UserID), tok, map[string]string{"username": "x"}).Code)
}

func TestInspectionLifecycle(t *testing.T) {
	e := newEnv(t, nil)
	inspector := e.token(e.owner, models.RoleInspector)
	admin := e.token(e.admin, models.RoleAdmin)
	id := e.insp.InspectionID

	rec := e.do(http.MethodPost, fmt.Sprintf("/inspection/%d/complete", id), inspector, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Completed", decode(t, rec)["Status"])

	rec = e.do(http.MethodPost, fmt.Sprintf("/inspection/%d/complete", id), inspector, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	equip, err := e.store.GetEquipment(t.Context(), e.insp.EquipID)
	require.NoError(t, err)
	require.NotNil(t, equip.NextInspectionDate)
	assert.Equal(t, "2025-04-01", *equip.NextInspectionDate)

	path := fmt.Sprintf("/report/%d/approve-upload", id)
	assert.Equal(t, http.StatusForbidden, e.upload(path, inspector, nil, []byte("doc")).Code)

	rec = e.upload(path, admin, nil, []byte("doc"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Report approved and uploaded", body["message"])
	assert.NotEmpty(t, body["pdf_url"])

	rep, err := e.store.GetReport(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Aisyah approved the report RPT-100.", *rep.Comment)

	rec = e.do(http.MethodGet, "/notification/"+e.owner.AuthUUID, inspector, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "Your report RPT-100 has been approved by Aisyah.", notes[0].Message)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/notification/someone-else", inspector, nil).Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/report/%d/summary.pdf", id), inspector, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = e.do(http.MethodPut, fmt.Sprintf("/report/%d/revert-approval", id), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Report reverted to Completed status", decode(t, rec)["message"])
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPut, fmt.Sprintf("/report/%d/revert-approval", id), admin, nil).Code)
}

func TestInspectionUpdateFieldMask(t *testing.T) {
	e := newEnv(t, nil)
	tok := e.token(e.owner, models.RoleInspector)
	path := fmt.Sprintf("/inspection/%d", e.insp.InspectionID)

	rec := e.do(http.MethodPut, path, tok, map[string]interface{}{"Findings": "Pitting", "NDTs": "UT ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodPut, path, tok, map[string]interface{}{"Findings": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Nil(t, body["Findings"])
	assert.Equal(t, "UT ok", body["NDTs"])
	assert.Equal(t, "Pending", body["Status"])

	rec = e.do(http.MethodPut, path, tok, map[string]interface{}{"Findings": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportCreateDuplicate(t *testing.T) {
	e := newEnv(t, nil)
	tok := e.token(e.owner, models.RoleInspector)
	body := map[string]interface{}{"InspectionID": e.insp.InspectionID}

	assert.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/report", tok, body).Code)

	rec := e.do(http.MethodPost, "/report", tok, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Report already exists for this Inspection ID. Use Update instead.", decode(t, rec)["detail"])

	rec = e.do(http.MethodPost, "/report", tok, map[string]interface{}{"InspectionID": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchDetectAndClear(t *testing.T) {
	e := newEnv(t, nil)
	tok := e.token(e.owner, models.RoleInspector)
	ctx := t.Context()

	p := &models.PhotoReport{InspectionID: e.insp.InspectionID, PhotoURL: "https://cdn.test/1.jpg"}
	require.NoError(t, e.store.CreatePhoto(ctx, p))

	rec := e.do(http.MethodPost, fmt.Sprintf("/photo/batch-detect/%d", e.insp.InspectionID), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["processed"])

	saved, err := e.store.GetPhoto(ctx, p.PhotoID)
	require.NoError(t, err)
	require.NotNil(t, saved.FindingID)

	photoPath := fmt.Sprintf("/photo/%d", p.PhotoID)
	rec = e.do(http.MethodPut, photoPath, tok, map[string]interface{}{"Caption": "Shell, north side"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Shell, north side", decode(t, rec)["Caption"])
	rec = e.do(http.MethodPut, photoPath, tok, map[string]interface{}{"Caption": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited, err := e.store.GetPhoto(ctx, p.PhotoID)
	require.NoError(t, err)
	assert.Nil(t, edited.Caption)
	assert.Equal(t, *saved.FindingID, *edited.FindingID, "caption edits leave detection results alone")
	assert.Equal(t, saved.RecommendID, edited.RecommendID)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/photo/999", tok, map[string]interface{}{"Caption": "x"}).Code)

	rec = e.do(http.MethodDelete, fmt.Sprintf("/photo/remove-ai/%d", p.PhotoID), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AI findings removed successfully", decode(t, rec)["message"])

	cleared, err := e.store.GetPhoto(ctx, p.PhotoID)
	require.NoError(t, err)
	assert.Nil(t, cleared.FindingID)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/photo/remove-ai/999", tok, nil).Code)
}

func TestNilRecommendation(t *testing.T) {
	e := newEnv(t, nil)
	tok := e.token(e.owner, models.RoleInspector)

	rec := e.do(http.MethodPost, "/recommendation", tok, map[string]string{"Description": " Nil. "})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["RecommendID"])

	list, err := e.store.ListRecommendations(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDetectionProxy(t *testing.T) {
	e := newEnv(t, nil)
	tok := e.token(e.owner, models.RoleInspector)

	rec := e.do(http.MethodGet, "/ai-detection/health", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = e.do(http.MethodGet, "/ai-detection/defect-types", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["defect_types"], 5)

	rec = e.do(http.MethodPost, "/ai-detection/detect-batch", tok, map[string]interface{}{
		"photo_ids": []uint{1, 2}, "photo_urls": []string{"a"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/ai-detection/detect-batch", tok, map[string]interface{}{
		"photo_ids": []uint{1, 2}, "photo_urls": []string{"a", "b"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["processed"])

	rec = e.do(http.MethodPost, "/ai-detection/detect-by-url?photo_url=https://cdn.test/x.jpg", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["detection_count"])
}

func TestAISummary(t *testing.T) {
	path := func(e *env) string { return fmt.Sprintf("/inspection/%d/ai-summary", e.insp.InspectionID) }

	off := newEnv(t, nil)
	rec := off.do(http.MethodPost, path(off), off.token(off.owner, models.RoleInspector), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	on := newEnv(t, fakeGenerator{})
	rec = on.do(http.MethodPost, path(on), on.token(on.owner, models.RoleInspector), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Rust on shell", body["findings"])
	assert.Equal(t, "UT", body["ndt"])

	rec = on.do(http.MethodPost, "/inspection/999/ai-summary", on.token(on.owner, models.RoleInspector), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeamRoutes(t *testing.T) {
	e := newEnv(t, nil)
	tok := e.token(e.owner, models.RoleInspector)

	rec := e.do(http.MethodPost, "/team", tok, map[string]interface{}{"InspectionID": e.insp.InspectionID})
	require.Equal(t, http.StatusCreated, rec.Code)
	teamID := uint(decode(t, rec)["TeamID"].(float64))

	rec = e.do(http.MethodPost, "/team", tok, map[string]interface{}{"InspectionID": e.insp.InspectionID})
	assert.Equal(t, http.StatusOK, rec.Code)

	member := map[string]interface{}{"TeamID": teamID, "UserID": e.admin.UserID}
	assert.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/team/member", tok, member).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/team/member", tok, member).Code)

	rec = e.do(http.MethodGet, "/team/inspection/999", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Team not found for this inspection", decode(t, rec)["detail"])

	rec = e.do(http.MethodDelete, fmt.Sprintf("/team/member/%d/%d", teamID, e.admin.UserID), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(decode(t, rec)["message"].(string), "Member removed"))
}
