package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// Renderer turns a document into displayable markup. vars supplies values for
// {{name}} placeholders in paragraph text.
type Renderer interface {
	Render(doc *Document, vars map[string]interface{}) (string, error)
}

const documentTemplate = `{{define "node"}}` +
	`{{if eq .Kind "paragraph"}}<p id="{{.Name}}" style="{{.Style}}">{{.Text}}` +
	`{{range $i, $s := .Swatches}}{{if $i}} &nbsp;&nbsp; {{end}}<span style="{{$s.Style}}"></span>{{$s.Label}}{{end}}</p>` +
	`{{else if eq .Kind "chart"}}<div id="{{.Name}}" style="{{.Style}}"></div>` +
	`<script>Highcharts.mapChart({{.Name}}, {{.Options}});</script>` +
	`{{else if eq .Kind "flex"}}<div id="{{.Name}}" style="{{.Style}}">{{range .Children}}{{template "node" .}}{{end}}</div>` +
	`{{end}}{{end}}` +
	`<div class="layout-document" style="{{.Style}}">{{range .Children}}{{template "node" .}}{{end}}</div>`

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// HTMLRenderer renders documents with html/template. Text is escaped and
// chart options are emitted as JSON inside a script element.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{tmpl: template.Must(template.New("document").Parse(documentTemplate))}
}

type documentView struct {
	Style    template.CSS
	Children []nodeView
}

type nodeView struct {
	Kind     string
	Name     string
	Text     string
	Style    template.CSS
	Swatches []swatchView
	Options  template.JS
	Children []nodeView
}

type swatchView struct {
	Label string
	Style template.CSS
}

func (r *HTMLRenderer) Render(doc *Document, vars map[string]interface{}) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}

	children, err := toViews(doc.Children, vars)
	if err != nil {
		return "", err
	}
	view := documentView{
		Style:    template.CSS(doc.Style.CSS()),
		Children: children,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("layout: render: %w", err)
	}
	return buf.String(), nil
}

func toViews(nodes []Node, vars map[string]interface{}) ([]nodeView, error) {
	views := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *Paragraph:
			pv := nodeView{
				Kind:  "paragraph",
				Name:  v.Name,
				Text:  substitute(v.Text, vars),
				Style: template.CSS(v.Style.CSS()),
			}
			for _, s := range v.Swatches {
				pv.Swatches = append(pv.Swatches, swatchView{
					Label: s.Label,
					Style: template.CSS(swatchStyle(s.Color).CSS()),
				})
			}
			views = append(views, pv)
		case *HighchartsChart:
			style := v.Style
			if v.MinHeight != "" {
				style = style.Merge(Style{"min-height": v.MinHeight})
			}
			// json.Marshal escapes <, > and & so the options are safe inside <script>.
			options, err := json.Marshal(v.Options)
			if err != nil {
				return nil, fmt.Errorf("layout: chart %s options: %w", v.Name, err)
			}
			views = append(views, nodeView{
				Kind:    "chart",
				Name:    v.Name,
				Style:   template.CSS(style.CSS()),
				Options: template.JS(options),
			})
		case *FlexContainer:
			direction := v.Direction
			if direction == "" {
				direction = "row"
			}
			style := Style{"display": "flex", "flex-direction": direction}.Merge(v.Style)
			children, err := toViews(v.Children, vars)
			if err != nil {
				return nil, err
			}
			views = append(views, nodeView{
				Kind:     "flex",
				Name:     v.Name,
				Style:    template.CSS(style.CSS()),
				Children: children,
			})
		}
	}
	return views, nil
}

func swatchStyle(color string) Style {
	return Style{
		"display":       "inline-block",
		"width":         "12px",
		"height":        "12px",
		"background":    cssSafe(color),
		"border-radius": "50%",
		"margin-right":  "6px",
	}
}

// cssSafe drops characters that could end a declaration.
func cssSafe(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '"', '\'', '<', '>', '{', '}', '\\':
			return -1
		}
		return r
	}, v)
}

func substitute(text string, vars map[string]interface{}) string {
	if len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		key := placeholderPattern.FindStringSubmatch(m)[1]
		if v, ok := vars[key]; ok {
			return cast.ToString(v)
		}
		return m
	})
}
