// Package web serves minimal browser pages over the result store: an
// index of all uploads and a per-file detail page that refreshes
// itself while processing is still in flight.
package web

import (
	"html/template"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ntentasd/aggregator-api/internal/store"
	"github.com/ntentasd/aggregator-api/pkg/types"
)

type UI struct {
	results store.ResultStore
	logger  zerolog.Logger
}

func New(results store.ResultStore, logger zerolog.Logger) *UI {
	return &UI{
		results: results,
		logger:  logger,
	}
}

func (ui *UI) IndexHandler(w http.ResponseWriter, r *http.Request) {
	records, err := ui.results.Scan(r.Context())
	if err != nil {
		ui.logger.Error().Err(err).Msg("scan failed")
		http.Error(w, "failed to list results", http.StatusInternalServerError)
		return
	}

	// Newest uploads first.
	sort.Slice(records, func(i, j int) bool {
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, records); err != nil {
		ui.logger.Error().Err(err).Msg("render failed")
	}
}

func (ui *UI) DetailHandler(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("file_id")

	record, err := ui.results.Get(r.Context(), fileID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	data := struct {
		Result     *types.ProcessingResult
		ShouldPoll bool
	}{
		Result:     record,
		ShouldPoll: !record.Status.Terminal(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := detailTemplate.Execute(w, data); err != nil {
		ui.logger.Error().Err(err).Str("file_id", fileID).Msg("render failed")
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head><title>Processing Results</title></head>
<body>
<h1>Processing Results</h1>
<table border="1" cellpadding="4">
<tr><th>file_id</th><th>status</th><th>uploaded_at</th></tr>
{{range .}}
<tr>
<td><a href="/ui/files/{{.FileID}}">{{.FileID}}</a></td>
<td>{{.Status}}</td>
<td>{{.UploadedAt.Format "2006-01-02T15:04:05Z07:00"}}</td>
</tr>
{{else}}
<tr><td colspan="3">No uploads yet.</td></tr>
{{end}}
</table>
</body>
</html>
`))

var detailTemplate = template.Must(template.New("detail").Parse(`<!doctype html>
<html>
<head>
<title>{{.Result.FileID}}</title>
{{if .ShouldPoll}}<meta http-equiv="refresh" content="1">{{end}}
</head>
<body>
<h1>File {{.Result.FileID}}</h1>
<p>Status: <strong>{{.Result.Status}}</strong></p>
<p>Uploaded: {{.Result.UploadedAt.Format "2006-01-02T15:04:05Z07:00"}}</p>
{{if .Result.ProcessedAt}}<p>Processed: {{.Result.ProcessedAt.Format "2006-01-02T15:04:05Z07:00"}}</p>{{end}}
{{if .Result.ProcessingMS}}<p>Processing time: {{.Result.ProcessingMS}} ms</p>{{end}}
{{with .Result.Aggregates}}
<h2>Aggregates</h2>
<ul>
<li>row_count: {{.RowCount}}</li>
{{if .MinValue}}<li>min_value: {{.MinValue}}</li>{{end}}
{{if .MaxValue}}<li>max_value: {{.MaxValue}}</li>{{end}}
{{if .MeanValue}}<li>mean_value: {{.MeanValue}}</li>{{end}}
</ul>
{{if .PerSensorCount}}
<h3>Per-sensor counts</h3>
<ul>
{{range $sensor, $count := .PerSensorCount}}<li>{{$sensor}}: {{$count}}</li>{{end}}
</ul>
{{end}}
{{end}}
{{if .Result.Errors}}
<h2>Errors</h2>
<ul>
{{range .Result.Errors}}<li>row {{.RowNumber}}: {{.Reason}}</li>{{end}}
</ul>
{{end}}
</body>
</html>
`))
