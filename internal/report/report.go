package report

import (
	"fmt"
	"html/template"
	"io"
	texttemplate "text/template"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/FranksOps/yelpleads/internal/enrich"
	"github.com/FranksOps/yelpleads/internal/export"
	"github.com/FranksOps/yelpleads/internal/lead"
)

// Run identifies the search a summary describes.
type Run struct {
	ID       string `json:"run_id"`
	City     string `json:"city"`
	Category string `json:"category"`
	Pages    int    `json:"pages"`
}

// Summary contains aggregated figures about one lead-generation run.
type Summary struct {
	Run            Run            `json:"run"`
	TotalLeads     int            `json:"total_leads"`
	ByScore        map[int]int    `json:"by_score"`
	MissingPhone   int            `json:"missing_phone"`
	MissingWebsite int            `json:"missing_website"`
	SummaryErrors  int            `json:"summary_errors"`
	Outcome        export.Outcome `json:"outcome"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        time.Time      `json:"end_time"`
	Duration       time.Duration  `json:"duration"`
}

// Message is the export outcome line shown to the operator.
func (s Summary) Message() string {
	return s.Outcome.String()
}

// GenerateSummary processes the enriched leads of a run to generate summary figures.
func GenerateSummary(run Run, leads lead.Collection, outcome export.Outcome, start, end time.Time) Summary {
	s := Summary{
		Run:       run,
		ByScore:   make(map[int]int),
		Outcome:   outcome,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}

	for _, l := range leads {
		s.TotalLeads++
		s.ByScore[l.Score]++
		if l.Phone == nil {
			s.MissingPhone++
		}
		if l.Website == nil {
			s.MissingWebsite++
		}
		if enrich.IsErrorSummary(l.OnlinePresence) {
			s.SummaryErrors++
		}
	}

	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Yelp Leads Summary
------------------
Search:          {{.Run.Category}} in {{.Run.City}} ({{.Run.Pages}} page{{if ne .Run.Pages 1}}s{{end}})
Run:             {{.Run.ID}}
Duration:        {{.Duration}}
Total Leads:     {{.TotalLeads}}
Missing Phone:   {{.MissingPhone}}
Missing Website: {{.MissingWebsite}}
LLM Errors:      {{.SummaryErrors}}

Scores:
{{- range $score, $count := .ByScore}}
  {{$score}}: {{$count}}
{{- else}}
  None
{{- end}}
`

	t, err := texttemplate.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: parse text template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Yelp Leads Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>{{.Run.Category}} in {{.Run.City}}</h1>
  <p><strong>Run:</strong> {{.Run.ID}} ({{.Duration}})</p>
  <p>{{.Message}}</p>

  <div class="stat-card">
    <div>Total Leads</div>
    <div class="stat-val">{{.TotalLeads}}</div>
  </div>
  <div class="stat-card">
    <div>Missing Phone</div>
    <div class="stat-val">{{.MissingPhone}}</div>
  </div>
  <div class="stat-card">
    <div>Missing Website</div>
    <div class="stat-val">{{.MissingWebsite}}</div>
  </div>
  <div class="stat-card">
    <div>LLM Errors</div>
    <div class="stat-val" style="color: {{if gt .SummaryErrors 0}}red{{else}}green{{end}};">{{.SummaryErrors}}</div>
  </div>

  <h3>Leads By Score</h3>
  <table>
    <tr><th>Score</th><th>Count</th></tr>
    {{- range $score, $count := .ByScore}}
    <tr><td>{{$score}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: parse html template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}

	return nil
}

// Write renders summary in the named format: text (default), json or html.
func Write(w io.Writer, format string, summary Summary) error {
	switch format {
	case "", "text":
		return WriteText(w, summary)
	case "json":
		return WriteJSON(w, summary)
	case "html":
		return WriteHTML(w, summary)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}
