// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import (
	"io"

	"github.com/google/safehtml/template"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
.parstat { border-collapse: collapse; }
.parstat th { text-align: left; border-bottom: 1px solid #666; padding: 0em 1em; }
.parstat td { text-align: right; padding: 0em 1em; }
.parstat td:nth-child(1) { text-align: left; }
.parstat tr.baseline td { color: #666; }
</style>
</head>
<body>
<table class="parstat">
<tr>{{range .Header}}<th>{{.}}{{end}}
{{range .Rows -}}
<tr class="{{if .Baseline}}baseline{{else}}modality{{end}}">{{range .Cells}}<td>{{.}}{{end}}
{{end -}}
</table>
</body>
</html>
`))

type htmlRow struct {
	Baseline bool
	Cells    []string
}

// FormatHTML writes rep to w as an HTML page holding one table.
func FormatHTML(w io.Writer, title string, rep *Report) error {
	data := struct {
		Title  string
		Header []string
		Rows   []htmlRow
	}{Title: title, Header: Header(rep.Family)}
	for _, row := range rep.Rows {
		data.Rows = append(data.Rows, htmlRow{row.Modality == Baseline, row.Fields()})
	}
	return htmlTemplate.Execute(w, data)
}
