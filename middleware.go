package rolodex

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func (a *API) defaultMiddleware(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(a.logMiddleware)
}

func (a *API) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default()
		logger = logger.With(
			"method", r.Method,
			"path", r.RequestURI,
			"host", r.Host,
			"from", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		t1 := time.Now()
		defer func() {
			logger.With(
				"status", ww.Status(),
				"bytes_written", ww.BytesWritten(),
				"time_elapsed", time.Since(t1),
			).Info("response completed")
		}()

		next.ServeHTTP(ww, r.WithContext(NewContextWithLogger(r.Context(), logger)))
	})
}

// requestBodyMiddleware decodes and validates the Record request body so
// handlers can get it from the context
func (a *API) requestBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, httpErr := a.getRecordFromRequest(r)
		if httpErr != nil {
			_ = render.Render(w, r, httpErr)
			return
		}

		logger := GetLoggerFromContext(r.Context())
		logger.Info("received request body", "body", body)

		next.ServeHTTP(w, r.WithContext(newContextWithRequestBody(r.Context(), body)))
	})
}

// recordExistsMiddleware loads the record named in the URL into the context.
// A missing last name is a 404 for GET, PUT, and DELETE alike since PUT only
// updates existing records
func (a *API) recordExistsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record, httpErr := a.getRequestedRecord(r)
		if httpErr != nil {
			_ = render.Render(w, r, httpErr)
			return
		}

		logger := GetLoggerFromContext(r.Context())
		logger = logger.With("lname", record.GetID())
		logger.Info("got record")

		ctx := newContextWithRecord(r.Context(), record)
		ctx = NewContextWithLogger(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
