package charsetdemo

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Sink receives the outcome of one path.
type Sink interface {
	Table(sc Schema, recs []Record)
	Error(err error)
}

// Region is an HTML Sink. Each path gets its own, so concurrent paths
// never write to the same buffer.
type Region struct {
	ID  string
	buf bytes.Buffer
}

var tableTmpl = template.Must(template.New("table").Parse(
	`{{if not .Recs}}<p>No data received.</p>` +
		`{{else}}<table><thead><tr>{{range .Schema}}<th>{{.}}</th>{{end}}</tr></thead>` +
		`<tbody>{{range .Recs}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody></table>{{end}}`))

var errorTmpl = template.Must(template.New("error").Parse(
	`<p class="error">Error: {{.}}</p>`))

// Table renders one row per record and one cell per field of sc, so rows
// always line up with the header.
func (rg *Region) Table(sc Schema, recs []Record) {
	rows := make([][]template.HTML, 0, len(recs))
	for _, rc := range recs {
		row := make([]template.HTML, len(sc))
		for i, f := range sc {
			row[i] = sanitize(rc.Get(sc, f))
		}
		rows = append(rows, row)
	}
	rg.execute(tableTmpl, struct {
		Schema Schema
		Recs   [][]template.HTML
	}{sc, rows})
}

func (rg *Region) Error(err error) {
	rg.execute(errorTmpl, err.Error())
}

// execute replaces the region with t's output. A template that fails
// midway leaves a fixed error paragraph instead of partial markup.
func (rg *Region) execute(t *template.Template, data any) {
	rg.buf.Reset()
	if err := t.Execute(&rg.buf, data); err != nil {
		rg.buf.Reset()
		rg.buf.WriteString(`<p class="error">Error: ` + template.HTMLEscapeString(err.Error()) + `</p>`)
	}
}

// HTML returns what was last rendered into the region.
func (rg *Region) HTML() template.HTML {
	return template.HTML(rg.buf.String())
}

var (
	valuePolicyOnce sync.Once
	valuePolicy     *bluemonday.Policy
)

// sanitize lets field values carry inline markup and entities such as
// &yen; while stripping anything active.
func sanitize(v string) template.HTML {
	valuePolicyOnce.Do(func() {
		valuePolicy = bluemonday.UGCPolicy()
	})
	return template.HTML(valuePolicy.Sanitize(v))
}

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func renderNote(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
