package server

import (
	"bytes"
	"fmt"
	"html/template"
)

// pageData feeds every page template. Unused fields are simply not
// rendered by the template in question.
type pageData struct {
	Message     string
	AppliedText string
	PatientIDs  []string
	SelectedIDs map[string]bool
	Header      []string
	Rows        [][]string
}

const baseStyle = `<style>
  body { font-family: sans-serif; margin: 2em; }
  table { border-collapse: collapse; margin-top: 1em; }
  th, td { border: 1px solid #999; padding: 4px 8px; }
  th { background: #eee; }
  .message { color: #8a6d3b; margin: 1em 0; }
  form { display: inline-block; margin-right: 1em; }
</style>`

const tableFragment = `{{if .Header}}<table>
  <tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
  {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
</table>{{end}}`

var uploadTmpl = template.Must(template.New("upload").Parse(baseStyle + `
<h1>parkVar</h1>
<p>Upload a patient variant CSV (#CHROM, POS, REF, ALT).</p>
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
<form method="post" action="/" enctype="multipart/form-data">
  <input type="file" name="file">
  <button type="submit">Upload</button>
</form>
`))

var previewTmpl = template.Must(template.New("preview").Parse(baseStyle + `
<h1>parkVar</h1>
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
<form method="post" action="/" enctype="multipart/form-data">
  <input type="file" name="file">
  <button type="submit">Upload another</button>
</form>
<form method="post" action="/annotate">
  <button type="submit">Validate &amp; annotate</button>
</form>
<form method="post" action="/refresh">
  <button type="submit">Start over</button>
</form>
` + tableFragment))

var annotatedTmpl = template.Must(template.New("annotated").Parse(baseStyle + `
<h1>Annotated variants</h1>
{{if .AppliedText}}<p class="message">{{.AppliedText}}</p>{{end}}
<form method="post" action="/filter">
  {{range .PatientIDs}}
    <label>
      <input type="checkbox" name="patient_id" value="{{.}}"{{if index $.SelectedIDs .}} checked{{end}}>
      {{.}}
    </label>
  {{end}}
  <button type="submit">Filter</button>
</form>
<form method="post" action="/refresh">
  <button type="submit">Start over</button>
</form>
` + tableFragment))

var errorTmpl = template.Must(template.New("error").Parse(baseStyle + `
<h1>Something went wrong</h1>
<p class="message">{{.Message}}</p>
<form method="post" action="/refresh">
  <button type="submit">Start over</button>
</form>
`))

// renderPage executes a page template to a string.
func renderPage(tmpl *template.Template, data pageData) (string, error) {
	if data.SelectedIDs == nil {
		data.SelectedIDs = map[string]bool{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
