package test

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// TestSuite represents a collection of end-to-end results
type TestSuite struct {
	Name        string       `json:"name"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	TotalTests  int          `json:"total_tests"`
	PassedTests int          `json:"passed_tests"`
	FailedTests int          `json:"failed_tests"`
	Results     []TestResult `json:"results"`
}

// TestResult represents a single checked expectation
type TestResult struct {
	TestName        string                 `json:"test_name"`
	Category        string                 `json:"category"`
	Passed          bool                   `json:"passed"`
	ExpectedOutcome string                 `json:"expected_outcome"`
	ActualOutcome   string                 `json:"actual_outcome"`
	Details         map[string]interface{} `json:"details,omitempty"`
	Duration        time.Duration          `json:"duration"`
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #ddd; padding: .4rem; text-align: left; }
.pass { color: #1a7f37; } .fail { color: #cf222e; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<p>{{.PassedTests}} / {{.TotalTests}} passed in {{duration .StartTime .EndTime}}</p>
<table>
<tr><th>Category</th><th>Test</th><th>Result</th><th>Expected</th><th>Actual</th></tr>
{{range .Results}}<tr>
<td>{{.Category}}</td><td>{{.TestName}}</td>
<td class="{{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}PASS{{else}}FAIL{{end}}</td>
<td>{{.ExpectedOutcome}}</td><td>{{.ActualOutcome}}</td>
</tr>{{end}}
</table>
</body>
</html>
`

// finalize fills the suite totals.
func (s *TestSuite) finalize() {
	s.EndTime = time.Now()
	s.TotalTests = len(s.Results)
	s.PassedTests, s.FailedTests = 0, 0
	for _, r := range s.Results {
		if r.Passed {
			s.PassedTests++
		} else {
			s.FailedTests++
		}
	}
}

// WriteReports writes report.html and report.json into dir.
func WriteReports(suite *TestSuite, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"duration": func(start, end time.Time) string { return end.Sub(start).Round(time.Millisecond).String() },
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "report.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := tmpl.Execute(f, suite); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	data, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "report.json"), data, 0o644)
}
