package receipt

import (
	"bytes"
	"html/template"
	"strings"
)

// HTMLOptions parameterise the browser rendering of a document.
type HTMLOptions struct {
	Title     string
	Paper     PaperSize
	Copies    int
	AutoPrint bool
}

// receiptTemplate is the only HTML layout; every browser-based transport renders through it.
var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: {{.WidthMM}}mm {{.HeightMM}}mm; margin: 0; }
html, body { margin: 0; padding: 0; }
body { width: {{.WidthMM}}mm; font-family: "Courier New", Courier, monospace; font-size: 10px; color: #000; }
.receipt { padding: 2mm; page-break-after: always; }
.receipt:last-child { page-break-after: auto; }
.line { white-space: pre; overflow: hidden; }
.center { text-align: center; }
.right { text-align: right; }
.bold { font-weight: bold; }
.double { font-size: 1.6em; }
</style>
</head>
<body>
{{- range .Copies}}
<div class="receipt">
{{- range $.Lines}}
<div class="{{.CSSClass}}">{{.Text}}</div>
{{- end}}
</div>
{{- end}}
{{- if .AutoPrint}}
<script>
window.addEventListener("load", function () { window.focus(); window.print(); });
</script>
{{- end}}
</body>
</html>
`))

// CSSClass returns the class list used by the HTML template.
func (l Line) CSSClass() string {
	classes := []string{"line", l.Kind.String()}
	if l.Align != AlignLeft {
		classes = append(classes, l.Align.String())
	}
	if l.Bold {
		classes = append(classes, "bold")
	}
	if l.Size != SizeNormal {
		classes = append(classes, "double")
	}
	return strings.Join(classes, " ")
}

// RenderHTML renders the document sized to the given paper, repeating it once per copy.
func RenderHTML(doc *Document, opts HTMLOptions) (string, error) {
	if doc == nil {
		doc = &Document{}
	}
	paper := opts.Paper
	if paper.WidthMM <= 0 {
		paper.WidthMM = PaperWidthMM
	}
	if paper.HeightMM <= 0 {
		paper.HeightMM = FixedHeightMM
	}
	copies := opts.Copies
	if copies < 1 {
		copies = 1
	}
	title := opts.Title
	if title == "" {
		title = "Receipt"
	}

	data := struct {
		Title     string
		WidthMM   float64
		HeightMM  int
		Lines     []Line
		Copies    []int
		AutoPrint bool
	}{
		Title:     title,
		WidthMM:   paper.WidthMM,
		HeightMM:  paper.HeightMM,
		Lines:     doc.Lines,
		Copies:    make([]int, copies),
		AutoPrint: opts.AutoPrint,
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
