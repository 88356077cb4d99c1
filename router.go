package rolodex

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// RecordsBasePath is the base URL path for the records resource
const RecordsBasePath = "/records"

// Route creates all API routes on the given router:
//
//	GET    /records            list all records
//	POST   /records            create or replace a record keyed by body lname
//	GET    /records/{lastName} get a record
//	PUT    /records/{lastName} update an existing record
//	DELETE /records/{lastName} delete a record
//
// plus the home page redirect, the API documentation endpoint, the event
// stream used by the HTML table, and the MCP endpoint when enabled
func (a *API) Route(r chi.Router) {
	EnableHTMLRender()

	a.defaultMiddleware(r)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RecordsBasePath, http.StatusFound)
	})
	r.Get(APISpecPath, a.apiSpec)

	if a.mcpPerm != MCPPermNone {
		r.Handle(MCPPath, a.mcpHandler())
	}

	r.Route(RecordsBasePath, func(r chi.Router) {
		r.With(a.requestBodyMiddleware).Post("/", a.createRecord())
		r.Get("/", a.listRecords())
		r.Get("/listen", a.HandleServerSentEvents(a.recordEvents))

		r.With(a.recordExistsMiddleware).Route(fmt.Sprintf("/{%s}", lastNameKey), func(r chi.Router) {
			r.Get("/", a.getRecord())
			r.With(a.requestBodyMiddleware).Put("/", a.updateRecord())
			r.Delete("/", a.deleteRecord())
		})
	})
}

// Router creates a new router with all API routes
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	a.Route(r)
	return r
}

func (a *API) listRecords() http.HandlerFunc {
	return handler(func(w http.ResponseWriter, r *http.Request) render.Renderer {
		logger := GetLoggerFromContext(r.Context())

		records, err := a.storage.GetAll(r.Context(), nil)
		if err != nil {
			logger.Error("error getting records", "error", err)
			return InternalServerError(err)
		}

		logger.Debug("responding with records", "count", len(records))

		render.Status(r, http.StatusOK)

		return records
	})
}

func (a *API) getRecord() http.HandlerFunc {
	return handler(func(w http.ResponseWriter, r *http.Request) render.Renderer {
		record, ok := GetRecordFromContext(r.Context())
		if !ok {
			return ErrNotFoundResponse
		}

		render.Status(r, http.StatusOK)

		return record
	})
}

// createRecord handles POST. It inserts a new record or replaces an existing
// one wholesale, keyed by the lname in the body
func (a *API) createRecord() http.HandlerFunc {
	return handler(func(w http.ResponseWriter, r *http.Request) render.Renderer {
		logger := GetLoggerFromContext(r.Context())

		record, ok := GetRequestBodyFromContext(r.Context())
		if !ok {
			return ErrInvalidRequest(errors.New("missing request body"))
		}

		record.Stamp(time.Now())

		logger.Info("storing record", "record", record)
		err := a.storage.Set(r.Context(), record)
		if err != nil {
			logger.Error("error storing record", "error", err)
			return InternalServerError(err)
		}

		a.notifyRecordEvent(r, "newRecord", record)

		render.Status(r, http.StatusCreated)

		return record
	})
}

// updateRecord handles PUT. It merges the provided fields over the stored
// record, so it only applies to last names that already exist
func (a *API) updateRecord() http.HandlerFunc {
	return handler(func(w http.ResponseWriter, r *http.Request) render.Renderer {
		logger := GetLoggerFromContext(r.Context())

		body, ok := GetRequestBodyFromContext(r.Context())
		if !ok {
			return ErrInvalidRequest(errors.New("missing request body"))
		}

		existing, ok := GetRecordFromContext(r.Context())
		if !ok {
			return ErrNotFoundResponse
		}

		if body.LastName != "" && body.LastName != existing.GetID() {
			return ErrInvalidRequest(errors.New("lname must match URL path"))
		}

		updated := *existing
		updated.Merge(body)
		updated.Stamp(time.Now())

		logger.Info("storing updated record", "record", &updated)
		err := a.storage.Set(r.Context(), &updated)
		if err != nil {
			logger.Error("error storing updated record", "error", err)
			return InternalServerError(err)
		}

		a.notifyRecordEvent(r, "updatedRecord", &updated)

		render.Status(r, http.StatusCreated)

		return &updated
	})
}

func (a *API) deleteRecord() http.HandlerFunc {
	return handler(func(w http.ResponseWriter, r *http.Request) render.Renderer {
		logger := GetLoggerFromContext(r.Context())

		lastName := GetLastNameParam(r)

		logger.Info("deleting record", "lname", lastName)

		err := a.storage.Delete(r.Context(), lastName)
		if err != nil {
			logger.Error("error deleting record", "error", err)

			if errors.Is(err, ErrNotFound) {
				return ErrNotFoundResponse
			}

			return InternalServerError(err)
		}

		// HTMX requires a 200 response code to do a swap after delete
		if render.GetAcceptedContentType(r) == render.ContentTypeHTML {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNoContent)
		}

		return nil
	})
}
