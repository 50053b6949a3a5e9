package status

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var pageTmpl = template.Must(template.New("status").Funcs(template.FuncMap{
	"timeAgo": timeAgo,
}).Parse(`<!DOCTYPE html>
<html>
<head><title>weaver status</title></head>
<body>
  <h1>weaver</h1>
  {{ if .Record }}
  <p>Last run: {{ .Record.Manifest.Target }} ({{ .Record.RecordedAt | timeAgo }})</p>
  <p>Run ID: {{ .Record.Manifest.RunID }}</p>
  <p>Files generated: {{ len .Record.Manifest.Entries }}</p>
  {{ if .Record.Health }}
  <h2>Health: {{ .Record.Health.Health.Grade }} ({{ printf "%.2f" .Record.Health.Health.Score }})</h2>
  <ul>
    <li>Compliance: {{ .Record.Health.Compliance.Grade }} ({{ printf "%.2f" .Record.Health.Compliance.Score }})</li>
    <li>Coverage: {{ .Record.Health.Coverage.Grade }} ({{ printf "%.2f" .Record.Health.Coverage.Score }})</li>
    <li>Performance: {{ .Record.Health.Performance.Grade }} ({{ printf "%.2f" .Record.Health.Performance.Score }})</li>
  </ul>
  {{ end }}
  <table border="1" cellpadding="4">
    <tr><th>Template</th><th>Output</th><th>Bytes</th></tr>
    {{ range .Record.Manifest.Entries }}
    <tr><td>{{ .Template }}</td><td>{{ .OutputPath }}</td><td>{{ .Bytes }}</td></tr>
    {{ end }}
  </table>
  {{ else }}
  <p>No generation run recorded yet.</p>
  {{ end }}
</body>
</html>
`))

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
}

func renderPage(rec *RunRecord) string {
	var buf bytes.Buffer
	data := struct{ Record *RunRecord }{Record: rec}
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("<html><body>render error: %v</body></html>", err)
	}
	return buf.String()
}
