package app

import (
	"context"
	"math"
	"strings"
	"testing"

	"psychofit/internal/fit"
	"psychofit/ports"
)

// stubSelector records the evidence it was handed and returns a fixed
// selection, keeping recovery tests independent of the sampler.
type stubSelector struct {
	evidence [][]float64
}

func (s *stubSelector) Select(_ context.Context, evidence [][]float64) (ports.Selection, error) {
	s.evidence = evidence
	k := len(evidence[0])
	uniform := make([]float64, k)
	for j := range uniform {
		uniform[j] = 1 / float64(k)
	}
	return ports.Selection{
		Frequencies:         uniform,
		Alpha:               uniform,
		Exceedance:          uniform,
		ProtectedExceedance: uniform,
		BayesOmnibusRisk:    0.5,
	}, nil
}

func TestRecoveryRun(t *testing.T) {
	selector := &stubSelector{}
	svc := NewRecoveryService(fit.NewDefaultFitter(nil), selector, nil)

	report, err := svc.Run(context.Background(), RecoveryConfig{
		SubjectsPerModel: 2,
		TrialsPerSubject: 60,
		Restarts:         2,
		Seed:             31,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got, want := report.Models, []string{"stationary", "nonstationary"}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("models %v, want %v", got, want)
	}
	if len(report.Subjects) != 4 {
		t.Fatalf("expected 4 subjects, got %d", len(report.Subjects))
	}

	// Evidence matrix is subjects x models and what the selector consumed.
	if len(selector.evidence) != 4 {
		t.Fatalf("selector saw %d rows", len(selector.evidence))
	}
	for i, row := range report.Evidence {
		if len(row) != 2 {
			t.Fatalf("evidence row %d has %d columns", i, len(row))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("evidence[%d][%d] = %g", i, j, v)
			}
		}
	}

	trueStationary := 0
	for _, s := range report.Subjects {
		if s.Subject == "" {
			t.Error("empty subject ID")
		}
		if !strings.HasPrefix(s.Subject, s.TrueModel+"_") {
			t.Errorf("subject %q not prefixed by its generating model %q", s.Subject, s.TrueModel)
		}
		if s.TrueModel == "stationary" {
			trueStationary++
		}
		if s.BestModel != "stationary" && s.BestModel != "nonstationary" {
			t.Errorf("subject %s: best model %q", s.Subject, s.BestModel)
		}
		if len(s.Records) != 2 {
			t.Errorf("subject %s: %d records", s.Subject, len(s.Records))
		}
	}
	if trueStationary != 2 {
		t.Errorf("expected 2 stationary subjects, got %d", trueStationary)
	}
	if report.Accuracy < 0 || report.Accuracy > 1 {
		t.Errorf("accuracy %g outside [0,1]", report.Accuracy)
	}
	if report.Selection.BayesOmnibusRisk != 0.5 {
		t.Errorf("selection not propagated")
	}
}

func TestRecoveryRun_Deterministic(t *testing.T) {
	run := func() *RecoveryReport {
		svc := NewRecoveryService(fit.NewDefaultFitter(nil), &stubSelector{}, nil)
		r, err := svc.Run(context.Background(), RecoveryConfig{
			SubjectsPerModel: 2,
			TrialsPerSubject: 50,
			Restarts:         2,
			Seed:             7,
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return r
	}

	a, b := run(), run()
	for i := range a.Evidence {
		for j := range a.Evidence[i] {
			if a.Evidence[i][j] != b.Evidence[i][j] {
				t.Fatalf("evidence[%d][%d] differs across identical runs", i, j)
			}
		}
	}
}
