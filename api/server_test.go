package api

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"psychofit/adapters/bms"
	"psychofit/adapters/dataset"
	"psychofit/app"
	"psychofit/domain/psychometric"
	"psychofit/internal/fit"
	"psychofit/ports"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	study := app.NewStudyService(
		dataset.NewReader(),
		fit.NewDefaultFitter(nil),
		nil,
		ports.SeededFactory{Base: 1},
		nil,
	)
	selector := bms.NewVariational(1)
	selector.Samples = 5000
	recovery := app.NewRecoveryService(fit.NewDefaultFitter(nil), selector, nil)
	return NewServer(Config{Port: "0"}, study, recovery, nil)
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

// syntheticTrials draws Bernoulli responses from a fixed stationary observer.
func syntheticTrials(n int) []psychometric.Trial {
	rng := rand.New(rand.NewSource(13))
	m := psychometric.Stationary{}
	theta := []float64{0, math.Log(4), 0.05}

	trials := make([]psychometric.Trial, n)
	for i := range trials {
		x := -20 + 40*rng.Float64()
		p, _ := m.Prob(theta, psychometric.Trial{Stimulus: x, Response: psychometric.CategoryPositive, Regime: psychometric.RegimeEarly})
		resp := psychometric.CategoryNegative
		if rng.Float64() < p {
			resp = psychometric.CategoryPositive
		}
		trials[i] = psychometric.Trial{Stimulus: x, Response: resp}
	}
	return trials
}

func TestFitEndpoint(t *testing.T) {
	srv := testServer(t)

	body, err := json.Marshal(map[string]interface{}{
		"trials":   syntheticTrials(120),
		"restarts": 3,
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/fit", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var report app.StudyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.Trials != 120 {
		t.Errorf("trials %d, want 120", report.Trials)
	}
	if len(report.Fits) != 2 || len(report.Records) != 2 {
		t.Fatalf("expected 2 fits and 2 records, got %d and %d", len(report.Fits), len(report.Records))
	}
	if report.BestByAIC == "" || report.BestByBIC == "" {
		t.Error("missing best-model labels")
	}
	for _, f := range report.Fits {
		if math.IsInf(f.NLL, 0) || math.IsNaN(f.NLL) {
			t.Errorf("model %s: bad NLL %g", f.Model, f.NLL)
		}
	}
}

func TestFitEndpoint_BadJSON(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/fit", strings.NewReader("{")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestFitEndpoint_BadResponseCategory(t *testing.T) {
	srv := testServer(t)

	body := `{"trials":[{"stimulus":1,"response":3}],"restarts":1}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/fit", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestSimulateEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping recovery pipeline in short mode")
	}
	srv := testServer(t)

	body := `{"subjects_per_model":2,"trials_per_subject":80,"restarts":2,"seed":9}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var report app.RecoveryReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(report.Subjects) != 4 {
		t.Fatalf("expected 4 subjects, got %d", len(report.Subjects))
	}
	if len(report.Selection.Frequencies) != 2 {
		t.Fatalf("expected 2 frequencies, got %d", len(report.Selection.Frequencies))
	}
	if report.Accuracy < 0 || report.Accuracy > 1 {
		t.Errorf("accuracy %g outside [0,1]", report.Accuracy)
	}
}
