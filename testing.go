package rolodex

import (
	"net/http/httptest"
	"testing"
)

// TestServe is meant to be used in external tests to automatically handle
// setting up routes and using httptest
func TestServe(t *testing.T, api *API) (string, func()) {
	t.Helper()

	server := httptest.NewServer(api.Router())
	return server.URL, server.Close
}
