package report

import (
	"strings"
	"testing"

	"psychofit/app"
	"psychofit/domain/psychometric"
	"psychofit/ports"
)

func sampleStudyReport() *app.StudyReport {
	return &app.StudyReport{
		StudyID:      "study-1",
		Trials:       200,
		PositiveRate: 0.48,
		Fits: []psychometric.FitResult{
			{Model: psychometric.ModelStationary, NLL: 120.5, NumParams: 3, SampleSize: 200, Converged: true, Restarts: 5},
			{Model: psychometric.ModelNonStationary, NLL: 118.2, NumParams: 4, SampleSize: 200, Converged: true, Restarts: 5},
		},
		Records: []psychometric.Criteria{
			{Model: psychometric.ModelStationary, LogLikelihood: -120.5, AIC: 247, BIC: 256.9, RescaledAIC: -123.5, RescaledBIC: -128.4},
			{Model: psychometric.ModelNonStationary, LogLikelihood: -118.2, AIC: 244.4, BIC: 257.6, RescaledAIC: -122.2, RescaledBIC: -128.8},
		},
		BestByAIC: psychometric.ModelNonStationary,
		BestByBIC: psychometric.ModelStationary,
	}
}

func TestStudyMarkdown(t *testing.T) {
	md := StudyMarkdown(sampleStudyReport())

	for _, want := range []string{
		"# Psychometric model comparison",
		"study-1",
		psychometric.ModelStationary,
		psychometric.ModelNonStationary,
		"Best by AIC: **nonstationary**",
		"Best by BIC: **stationary**",
		"| Model | LL | AIC | BIC | rAIC | rBIC |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRecoveryMarkdown(t *testing.T) {
	r := &app.RecoveryReport{
		Models: []string{psychometric.ModelStationary, psychometric.ModelNonStationary},
		Subjects: []app.SubjectRecovery{
			{Subject: "s1", TrueModel: psychometric.ModelStationary, BestModel: psychometric.ModelStationary},
			{Subject: "s2", TrueModel: psychometric.ModelNonStationary, BestModel: psychometric.ModelStationary},
		},
		Selection: ports.Selection{
			Frequencies:         []float64{0.7, 0.3},
			Exceedance:          []float64{0.92, 0.08},
			ProtectedExceedance: []float64{0.88, 0.12},
			BayesOmnibusRisk:    0.1,
		},
		Accuracy: 0.5,
	}
	md := RecoveryMarkdown(r)

	for _, want := range []string{
		"# Group model recovery",
		"2 subjects",
		"accuracy 0.500",
		"Bayesian omnibus risk: 0.1000",
		"| s1 | stationary | stationary |",
		"| s2 | nonstationary | stationary |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestToHTML(t *testing.T) {
	out := string(ToHTML(StudyMarkdown(sampleStudyReport())))

	if !strings.Contains(out, "<h1") {
		t.Error("expected an h1 heading in HTML output")
	}
	if !strings.Contains(out, "<table") {
		t.Error("expected a rendered table in HTML output")
	}
}
