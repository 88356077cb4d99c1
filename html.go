package rolodex

import (
	"bytes"
	"html/template"
	"net/http"
	"sync"

	"github.com/go-chi/render"
)

var respondOnce sync.Once

// HTMLer allows for easily representing responses as HTML strings when accepted
// content type is text/html
type HTMLer interface {
	HTML(*http.Request) string
}

// EnableHTMLRender overrides the default render.Respond function to add support
// for the HTMLer interface that renders HTML responses
func EnableHTMLRender() {
	respondOnce.Do(func() {
		render.Respond = func(w http.ResponseWriter, r *http.Request, v interface{}) {
			if render.GetAcceptedContentType(r) == render.ContentTypeHTML {
				htmler, ok := v.(HTMLer)
				if ok {
					render.HTML(w, r, htmler.HTML(r))
					return
				}
			}

			render.DefaultResponder(w, r, v)
		}
	})
}

// MustRenderHTML executes the template with the provided data and panics if it
// fails. Templates are compile-time constants so errors are programmer errors
func MustRenderHTML(tmpl *template.Template, data any) string {
	var renderedOutput bytes.Buffer
	err := tmpl.Execute(&renderedOutput, data)
	if err != nil {
		panic(err)
	}

	return renderedOutput.String()
}
