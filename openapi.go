package rolodex

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/invopop/jsonschema"
)

// APISpecPath is where the machine-readable API description is served
const APISpecPath = "/api/spec"

// APISpec is a minimal Swagger-style description of the records API:
// metadata, the operations on each path, and a JSON Schema for the Record
// model so documentation clients can render request and response bodies
type APISpec struct {
	APIVersion  string             `json:"apiVersion"`
	Description string             `json:"description"`
	BasePath    string             `json:"basePath"`
	Operations  []SpecOperation    `json:"operations"`
	Models      *jsonschema.Schema `json:"models"`
}

// SpecOperation documents a single HTTP operation
type SpecOperation struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary"`
	Success int    `json:"success"`
	Failure int    `json:"failure,omitempty"`
}

func (s *APISpec) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func (a *API) apiSpec(w http.ResponseWriter, r *http.Request) {
	spec := &APISpec{
		APIVersion:  "0.1",
		Description: "A REST API serving a names data structure",
		BasePath:    RecordsBasePath,
		Operations: []SpecOperation{
			{
				Method:  http.MethodGet,
				Path:    RecordsBasePath,
				Summary: "Get the entire list of records",
				Success: http.StatusOK,
			},
			{
				Method:  http.MethodPost,
				Path:    RecordsBasePath,
				Summary: "Create a new record, or replace the record with the same last name",
				Success: http.StatusCreated,
			},
			{
				Method:  http.MethodGet,
				Path:    RecordsBasePath + "/{lastName}",
				Summary: "Get a particular record by last name",
				Success: http.StatusOK,
				Failure: http.StatusNotFound,
			},
			{
				Method:  http.MethodPut,
				Path:    RecordsBasePath + "/{lastName}",
				Summary: "Update an existing record, merging provided fields",
				Success: http.StatusCreated,
				Failure: http.StatusNotFound,
			},
			{
				Method:  http.MethodDelete,
				Path:    RecordsBasePath + "/{lastName}",
				Summary: "Delete a record by last name",
				Success: http.StatusNoContent,
				Failure: http.StatusNotFound,
			},
		},
		Models: jsonschema.Reflect(&Record{}),
	}

	err := render.Render(w, r, spec)
	if err != nil {
		logger := GetLoggerFromContext(r.Context())
		logger.Error("unable to render api spec", "error", err)
		_ = render.Render(w, r, ErrRender(err))
	}
}
