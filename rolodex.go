package rolodex

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// API encapsulates all handlers and other pieces of code required to run the
// records CRUD API: the storage backend, HTTP server lifecycle, and the
// server-sent event broadcaster used by the HTML front-end
type API struct {
	storage Storage

	server    *http.Server
	quit      chan os.Signal
	serverCtx context.Context

	recordEvents *broadcastChannel[*ServerSentEvent]
	events       chan<- *ServerSentEvent

	mcpPerm MCPPerm

	cliArgs cliArgs
}

// NewAPI initializes an API with the default in-memory storage backend
func NewAPI() *API {
	api := &API{
		storage:      NewMapStorage(),
		quit:         make(chan os.Signal, 1),
		recordEvents: &broadcastChannel[*ServerSentEvent]{},
	}
	api.events = api.recordEvents.GetInputChannel()

	return api
}

// SetStorage sets a custom storage backend for the API
func (a *API) SetStorage(s Storage) *API {
	a.storage = s
	return a
}

// Storage returns the storage backend for the API so it can be used outside of
// request handlers
func (a *API) Storage() Storage {
	return a.storage
}

// Seed inserts the demo records
func (a *API) Seed(ctx context.Context) error {
	seed := []*Record{
		{FirstName: "Doug", LastName: "Farrell"},
		{FirstName: "Kevin", LastName: "Murphy"},
		{FirstName: "Bunny", LastName: "Easter"},
		{FirstName: "Ham", LastName: "Burglar"},
		{FirstName: "Bill", LastName: "Nye"},
	}

	now := time.Now()
	for _, record := range seed {
		record.Stamp(now)

		err := a.storage.Set(ctx, record)
		if err != nil {
			return err
		}
	}

	return nil
}

// Serve will serve the API on the given address
func (a *API) Serve(address string) error {
	a.server = &http.Server{Addr: address, Handler: a.Router()}

	var serverStopCtx context.CancelFunc
	a.serverCtx, serverStopCtx = context.WithCancel(context.Background())

	signal.Notify(a.quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-a.quit

		shutdownCtx, cancel := context.WithTimeout(a.serverCtx, 10*time.Second)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := a.server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	slog.Info("starting server", "address", address)
	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("server shutdown error", "error", err)
		return err
	}

	<-a.serverCtx.Done()

	return nil
}

// Stop will stop the API
func (a *API) Stop() {
	a.quit <- os.Interrupt
	<-a.serverCtx.Done()
}

// Done returns a channel that's closed when the API stops, similar to context.Done()
func (a *API) Done() <-chan os.Signal {
	return a.quit
}
