package server

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: sans-serif; margin: 0; display: flex; flex-direction: column; align-items: center; }
    nav { margin: 16px 0; }
    nav a { margin: 0 8px; color: #1f77b4; text-decoration: none; }
    nav a.selected { font-weight: bold; text-decoration: underline; }
  </style>
</head>
<body>
  <nav>
    {{- range .Datasets}}
    <a href="?data={{.Key}}"{{if eq .Key $.Selected}} class="selected"{{end}}>{{.Title}}</a>
    {{- end}}
  </nav>
  {{.SVG}}
</body>
</html>
`))
