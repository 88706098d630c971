package digest

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/amishk599/jobdigest/internal/model"
)

var htmlTemplate = template.Must(template.New("digest").Parse(`<html><body>
<h2>🧭 AI-Powered Job Digest ({{.GeneratedAt.Format "Jan 02, 2006"}})</h2>
{{- range .Sections}}
<h3>👤 {{.Profile}}</h3>
{{- if not .Entries}}
<p>No matches found today.</p>
{{- else}}
<ul>
{{- range .Entries}}
<li><b>{{.Title}}</b> at {{.Company}} ({{.Location}}) – <b>{{.Percent}}%</b> match<br>
<a href="{{.Link}}" target="_blank" style="color:#1a73e8;text-decoration:none;">🔗 View Job</a></li>
{{- end}}
</ul><br>
{{- end}}
{{- end}}
</body></html>
`))

// RenderHTML renders d as an HTML email body.
func RenderHTML(d model.Digest) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render digest html: %w", err)
	}
	return buf.String(), nil
}
