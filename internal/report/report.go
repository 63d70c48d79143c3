// Package report renders study and recovery results as markdown and HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"psychofit/app"
)

// StudyMarkdown renders a comparison study as a markdown report.
func StudyMarkdown(r *app.StudyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Psychometric model comparison\n\n")
	fmt.Fprintf(&b, "Study `%s`: %d trials, positive-response rate %.3f.\n\n", r.StudyID, r.Trials, r.PositiveRate)

	b.WriteString("## Fits\n\n")
	b.WriteString("| Model | NLL | k | n | Converged | Restarts |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, f := range r.Fits {
		fmt.Fprintf(&b, "| %s | %.4f | %d | %d | %v | %d |\n",
			f.Model, f.NLL, f.NumParams, f.SampleSize, f.Converged, f.Restarts)
	}

	b.WriteString("\n## Comparison\n\n")
	b.WriteString("| Model | LL | AIC | BIC | rAIC | rBIC |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, c := range r.Records {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
			c.Model, c.LogLikelihood, c.AIC, c.BIC, c.RescaledAIC, c.RescaledBIC)
	}

	fmt.Fprintf(&b, "\nBest by AIC: **%s**. Best by BIC: **%s**.\n", r.BestByAIC, r.BestByBIC)
	return b.String()
}

// RecoveryMarkdown renders a recovery study as a markdown report.
func RecoveryMarkdown(r *app.RecoveryReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Group model recovery\n\n")
	fmt.Fprintf(&b, "%d subjects, per-subject recovery accuracy %.3f.\n\n", len(r.Subjects), r.Accuracy)

	b.WriteString("## Group Bayesian model selection\n\n")
	b.WriteString("| Model | Expected frequency | Exceedance | Protected exceedance |\n")
	b.WriteString("|---|---|---|---|\n")
	for i, m := range r.Models {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f |\n",
			m, r.Selection.Frequencies[i], r.Selection.Exceedance[i], r.Selection.ProtectedExceedance[i])
	}
	fmt.Fprintf(&b, "\nBayesian omnibus risk: %.4f.\n", r.Selection.BayesOmnibusRisk)

	b.WriteString("\n## Subjects\n\n")
	b.WriteString("| Subject | True model | Best model |\n")
	b.WriteString("|---|---|---|\n")
	for _, s := range r.Subjects {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Subject, s.TrueModel, s.BestModel)
	}
	return b.String()
}

// ToHTML converts a markdown report to a standalone HTML fragment.
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
