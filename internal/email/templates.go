package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const subjectQualityAlertFmt = "Call quality alert: score %d (threshold %d)"

const baseTemplate = `{{define "email"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family:Arial,Helvetica,sans-serif;color:#1f2933;">
<h1 style="font-size:20px;">{{.Heading}}</h1>
{{if .Subheading}}<p style="color:#52606d;">{{.Subheading}}</p>{{end}}
{{template "content" .}}
</body>
</html>{{end}}`

const qualityAlertTemplate = `{{define "content"}}
<table cellpadding="4">
<tr><td><strong>Quality score</strong></td><td>{{.QualityScore}} / 100</td></tr>
<tr><td><strong>Threshold</strong></td><td>{{.Threshold}}</td></tr>
<tr><td><strong>Sentiment</strong></td><td>{{.Sentiment}}</td></tr>
{{if .RequestID}}<tr><td><strong>Request</strong></td><td>{{.RequestID}}</td></tr>{{end}}
<tr><td><strong>Analyzed at</strong></td><td>{{.AnalyzedAt}}</td></tr>
</table>
{{if .Reasons}}<h2 style="font-size:16px;">Why this call was flagged</h2>
<ul>{{range .Reasons}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .FailedCompliance}}<h2 style="font-size:16px;">Failed compliance steps</h2>
<ul>{{range .FailedCompliance}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Summary}}<h2 style="font-size:16px;">Summary</h2>
<p>{{.Summary}}</p>{{end}}
{{end}}`

var templates = map[string]*template.Template{
	"quality_alert": template.Must(template.Must(template.New("base").Parse(baseTemplate)).Parse(qualityAlertTemplate)),
}

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type qualityAlertEmailData struct {
	baseEmailData
	QualityAlert
	AnalyzedAt string
}

func renderEmailTemplate(name string, data any) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func qualityAlertSubject(alert QualityAlert) string {
	return fmt.Sprintf(subjectQualityAlertFmt, alert.QualityScore, alert.Threshold)
}

func renderQualityAlert(alert QualityAlert) (string, error) {
	at := alert.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	return renderEmailTemplate("quality_alert", qualityAlertEmailData{
		baseEmailData: baseEmailData{
			Title:      "Call quality alert",
			Heading:    "A call needs review",
			Subheading: "An analyzed call fell below the quality bar or failed a compliance step.",
		},
		QualityAlert: alert,
		AnalyzedAt:   at.UTC().Format(time.RFC1123),
	})
}
