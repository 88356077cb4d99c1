package rolodex

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// lastNameKey is the chi URL param key used for the record key
const lastNameKey = "lastName"

// GetLastNameParam gets the record last name from the request URL
func GetLastNameParam(r *http.Request) string {
	return chi.URLParam(r, lastNameKey)
}

// handler adapts a render.Renderer-returning function to an http.HandlerFunc.
// A nil Renderer means the response was already written
func handler(do func(w http.ResponseWriter, r *http.Request) render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := do(w, r)
		if resp == nil {
			return
		}

		err := render.Render(w, r, resp)
		if err != nil {
			logger := GetLoggerFromContext(r.Context())
			logger.Error("unable to render response", "error", err)
			_ = render.Render(w, r, ErrRender(err))
		}
	}
}

// getRecordFromRequest decodes and validates a Record from the request body
func (a *API) getRecordFromRequest(r *http.Request) (*Record, *ErrResponse) {
	record := &Record{}
	err := render.Bind(r, record)
	if err != nil {
		return nil, ErrInvalidRequest(err)
	}

	return record, nil
}

// getRequestedRecord reads the Record from storage based on the last name in
// the request URL
func (a *API) getRequestedRecord(r *http.Request) (*Record, *ErrResponse) {
	lastName := GetLastNameParam(r)

	record, err := a.storage.Get(r.Context(), lastName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFoundResponse
		}

		return nil, InternalServerError(err)
	}

	return record, nil
}
