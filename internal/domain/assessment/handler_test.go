package assessment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gdmcare/gdmcare/internal/platform/auth"
)

// doJSON invokes the handler behind the development identity, matching how
// the server wires handlers when no JWT secret is configured.
func doJSON(t *testing.T, h echo.HandlerFunc, method, path, body string, params map[string]string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	return rec, auth.DevAuthMiddleware()(h)(c)
}

func TestAssessHandler(t *testing.T) {
	svc, _, patients, _, _ := newTestService(t)
	h := NewHandler(svc)
	pid := addPatient(patients, true)

	body := `{"age":29,"bmi":23.5,"systolic_bp":112,"diastolic_bp":72,"pregnancies_count":1}`
	rec, err := doJSON(t, h.Assess, http.MethodPost, "/api/v1/patients/"+pid.String()+"/assessments",
		body, map[string]string{"id": pid.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["risk_label"] == "" {
		t.Error("expected risk_label in response")
	}
	if _, ok := resp["recommendations"]; !ok {
		t.Error("expected recommendations in response")
	}
}

func TestAssessHandler_ValidationFailure(t *testing.T) {
	svc, _, patients, _, _ := newTestService(t)
	h := NewHandler(svc)
	pid := addPatient(patients, true)

	rec, err := doJSON(t, h.Assess, http.MethodPost, "/api/v1/patients/"+pid.String()+"/assessments",
		`{"age":29}`, map[string]string{"id": pid.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}

	var resp struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Errors) == 0 {
		t.Fatal("expected error list")
	}
	found := false
	for _, msg := range resp.Errors {
		if strings.Contains(msg, "bmi") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a message naming bmi, got %v", resp.Errors)
	}
}

func TestAssessHandler_InvalidPatientID(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	h := NewHandler(svc)

	_, err := doJSON(t, h.Assess, http.MethodPost, "/api/v1/patients/abc/assessments",
		`{}`, map[string]string{"id": "abc"})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestPredictHandler_DoesNotPersist(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	h := NewHandler(svc)

	body := `{"age":29,"bmi":23.5,"systolic_bp":112,"diastolic_bp":72,"pregnancies_count":1}`
	rec, err := doJSON(t, h.Predict, http.MethodPost, "/api/v1/risk/predict", body, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if len(repo.assessments) != 0 {
		t.Error("predict must not persist an assessment")
	}
}

func TestModelStatusHandler(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	h := NewHandler(svc)

	rec, err := doJSON(t, h.ModelStatus, http.MethodGet, "/api/v1/risk/model-status", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "1.0.0") {
		t.Errorf("expected model version in response: %s", rec.Body.String())
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	h := NewHandler(svc)

	_, err := doJSON(t, h.Get, http.MethodGet, "/api/v1/assessments/"+uuid.NewString(),
		"", map[string]string{"id": uuid.NewString()})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestAssessHandler_MissingIdentity(t *testing.T) {
	svc, repo, patients, _, _ := newTestService(t)
	h := NewHandler(svc)
	pid := addPatient(patients, true)

	e := echo.New()
	body := `{"age":29,"bmi":23.5,"systolic_bp":112,"diastolic_bp":72,"pregnancies_count":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/"+pid.String()+"/assessments",
		strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(pid.String())

	err := h.Assess(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without an identity, got %v", err)
	}
	if len(repo.assessments) != 0 {
		t.Error("nothing should be persisted without an identity")
	}
}

func TestAssessFromMetricsHandler(t *testing.T) {
	svc, repo, patients, metricsDir, _ := newTestService(t)
	h := NewHandler(svc)
	pid := addPatient(patients, true)
	patients.patients[pid].DateOfBirth = time.Date(1996, 5, 10, 0, 0, 0, 0, time.UTC)
	metricsDir.latest[pid] = completeVisit(pid)

	rec, err := doJSON(t, h.AssessFromMetrics, http.MethodPost,
		"/api/v1/patients/"+pid.String()+"/assessments/from-metrics", "",
		map[string]string{"id": pid.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201", rec.Code)
	}
	if len(repo.assessments) != 1 {
		t.Error("assessment not persisted")
	}
	for _, a := range repo.assessments {
		if a.AssessedBy != auth.DevUserID {
			t.Errorf("assessed_by = %s, want the dev identity", a.AssessedBy)
		}
	}
}

func TestAssessFromMetricsHandler_NoVisit(t *testing.T) {
	svc, _, patients, _, _ := newTestService(t)
	h := NewHandler(svc)
	pid := addPatient(patients, true)

	_, err := doJSON(t, h.AssessFromMetrics, http.MethodPost,
		"/api/v1/patients/"+pid.String()+"/assessments/from-metrics", "",
		map[string]string{"id": pid.String()})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without recorded metrics, got %v", err)
	}
}
