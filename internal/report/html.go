package report

import (
	"html/template"
	"os"
	"time"

	"github.com/fastygo/regioncheck/domain"
)

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": func(v float64) string { return formatPercent(v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Region validation {{.RunID}}</title>
<style>
body{font-family:sans-serif;margin:2rem}
table{border-collapse:collapse}
th,td{border:1px solid #ccc;padding:.3rem .6rem;text-align:left}
.pass{color:#17803d}.fail{color:#b91c1c}
</style>
</head>
<body>
<h1>Region validation</h1>
<p>Run {{.RunID}} at {{.Timestamp}} against {{.Endpoint}}</p>
<p>Region lat [{{.Criteria.Region.LatMin}}, {{.Criteria.Region.LatMax}}], lng [{{.Criteria.Region.LngMin}}, {{.Criteria.Region.LngMax}}], threshold &gt; {{.Criteria.Threshold}}%</p>
<p>Total {{.Summary.TotalUsers}}, passed {{.Summary.PassedUsers}}, failed {{.Summary.FailedUsers}}:
{{if .Summary.OverallResult}}<strong class="pass">PASS</strong>{{else}}<strong class="fail">FAIL</strong>{{end}}</p>
<table>
<thead><tr><th>ID</th><th>Name</th><th>Username</th><th>Lat</th><th>Lng</th><th>Completed</th><th>Total</th><th>%</th><th>Result</th></tr></thead>
<tbody>
{{range .Summary.UserResults}}<tr>
<td>{{.UserID}}</td><td>{{.UserName}}</td><td>{{.Username}}</td><td>{{.Coordinates.Lat}}</td><td>{{.Coordinates.Lng}}</td>
<td>{{.CompletedTodos}}</td><td>{{.TotalTodos}}</td><td>{{pct .CompletionPercentage}}</td>
<td>{{if .Passed}}<span class="pass">PASS</span>{{else}}<span class="fail">FAIL</span>{{end}}</td>
</tr>
{{else}}<tr><td colspan="9">No users in region</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type htmlView struct {
	RunID     string
	Timestamp string
	Endpoint  string
	Criteria  domain.Criteria
	Summary   *domain.Summary
}

// WriteHTML renders the summary as a standalone page, region_users_report_<ts>.html.
func (w *Writer) WriteHTML(meta RunMeta, summary *domain.Summary) (string, error) {
	if summary == nil {
		summary = domain.NewSummary(nil)
	}
	stamp := meta.Timestamp
	if stamp.IsZero() {
		stamp = w.now()
	}
	view := htmlView{
		RunID:     meta.RunID,
		Timestamp: stamp.Format(time.RFC3339),
		Endpoint:  meta.Endpoint,
		Criteria:  meta.Criteria,
		Summary:   summary,
	}
	return w.create(w.path("region_users_report", "html", meta), func(f *os.File) error {
		return htmlReport.Execute(f, view)
	})
}
