package rolodex_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rolodex-go/rolodex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, method, url, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader = http.NoBody
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(respBody)
}

func decodeRecord(t *testing.T, body string) *rolodex.Record {
	t.Helper()

	var record rolodex.Record
	require.NoError(t, json.Unmarshal([]byte(body), &record))
	return &record
}

func TestRecordsAPI(t *testing.T) {
	api := rolodex.NewAPI()
	serverURL, stop := rolodex.TestServe(t, api)
	defer stop()

	recordsURL := serverURL + rolodex.RecordsBasePath

	t.Run("ListEmpty", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, recordsURL, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[]`, body)
	})

	t.Run("GetMissingRecordNotFound", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, recordsURL+"/Nonexistent", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"status":"Record not found."}`, body)
	})

	t.Run("PutMissingRecordNotFound", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodPut, recordsURL+"/Nonexistent", `{"fname":"Bill"}`, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("DeleteMissingRecordNotFound", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodDelete, recordsURL+"/Nonexistent", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("CreateWithoutLastName", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodPost, recordsURL, `{"fname":"Bill"}`, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "missing required lname field")
	})

	t.Run("CreateWithTimestampRejected", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodPost, recordsURL, `{"lname":"Nye","timestamp":"2023-01-01 00:00:00"}`, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	var created *rolodex.Record
	t.Run("CreateRecord", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodPost, recordsURL, `{"fname":"Bill","lname":"Nye"}`, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		created = decodeRecord(t, body)
		assert.Equal(t, "Bill", created.FirstName)
		assert.Equal(t, "Nye", created.LastName)
		assert.NotEmpty(t, created.Timestamp)
		assert.False(t, created.Revision.IsNil())

		_, err := time.Parse(rolodex.TimestampFormat, created.Timestamp)
		assert.NoError(t, err)
	})

	t.Run("GetAfterCreate", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, recordsURL+"/Nye", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		record := decodeRecord(t, body)
		assert.Equal(t, "Bill", record.FirstName)
		assert.Equal(t, "Nye", record.LastName)
		assert.Equal(t, created.Timestamp, record.Timestamp)
		assert.Equal(t, created.Revision.String(), record.Revision.String())
	})

	t.Run("UpdateRecordMergesFields", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodPut, recordsURL+"/Nye", `{"fname":"William"}`, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		updated := decodeRecord(t, body)
		assert.Equal(t, "William", updated.FirstName)
		assert.Equal(t, "Nye", updated.LastName)
		assert.GreaterOrEqual(t, updated.Timestamp, created.Timestamp)
		assert.NotEqual(t, created.Revision.String(), updated.Revision.String())
	})

	t.Run("PutMismatchedLastName", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodPut, recordsURL+"/Nye", `{"lname":"Smith"}`, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "lname must match URL path")
	})

	t.Run("PostReplacesWholesale", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodPost, recordsURL, `{"lname":"Nye"}`, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		record := decodeRecord(t, body)
		assert.Empty(t, record.FirstName)
		assert.Equal(t, "Nye", record.LastName)
	})

	t.Run("ListTracksCreatesAndDeletes", func(t *testing.T) {
		for _, body := range []string{
			`{"fname":"Doug","lname":"Farrell"}`,
			`{"fname":"Kevin","lname":"Murphy"}`,
			`{"fname":"Bunny","lname":"Easter"}`,
		} {
			resp, _ := doRequest(t, http.MethodPost, recordsURL, body, nil)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
		}

		resp, body := doRequest(t, http.MethodGet, recordsURL, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var records rolodex.Records
		require.NoError(t, json.Unmarshal([]byte(body), &records))
		require.Len(t, records, 4)

		lastNames := []string{}
		for _, record := range records {
			lastNames = append(lastNames, record.LastName)
		}
		assert.Equal(t, []string{"Easter", "Farrell", "Murphy", "Nye"}, lastNames)

		resp, _ = doRequest(t, http.MethodDelete, recordsURL+"/Easter", "", nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, body = doRequest(t, http.MethodGet, recordsURL, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		records = rolodex.Records{}
		require.NoError(t, json.Unmarshal([]byte(body), &records))
		assert.Len(t, records, 3)
	})

	t.Run("DeleteRecord", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodDelete, recordsURL+"/Nye", "", nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = doRequest(t, http.MethodGet, recordsURL+"/Nye", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("DeleteForHTMLClientsReturnsOK", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodPost, recordsURL, `{"fname":"Ham","lname":"Burglar"}`, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = doRequest(t, http.MethodDelete, recordsURL+"/Burglar", "", map[string]string{
			"Accept": "text/html",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("ListAsHTMLRendersPage", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, recordsURL, "", map[string]string{
			"Accept": "text/html",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, body, "<table")
		assert.Contains(t, body, "Add Record")
		assert.Contains(t, body, "<td>Farrell</td>")
	})

	t.Run("HomeRedirectsToRecords", func(t *testing.T) {
		client := &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}

		resp, err := client.Get(serverURL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, rolodex.RecordsBasePath, resp.Header.Get("Location"))
	})
}

func TestSeed(t *testing.T) {
	api := rolodex.NewAPI()
	require.NoError(t, api.Seed(context.Background()))

	records, err := api.Storage().GetAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 5)

	lastNames := []string{}
	for _, record := range records {
		lastNames = append(lastNames, record.LastName)
	}
	assert.Equal(t, []string{"Burglar", "Easter", "Farrell", "Murphy", "Nye"}, lastNames)
}

func TestAPISpec(t *testing.T) {
	api := rolodex.NewAPI()
	serverURL, stop := rolodex.TestServe(t, api)
	defer stop()

	resp, body := doRequest(t, http.MethodGet, serverURL+rolodex.APISpecPath, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var spec struct {
		APIVersion  string `json:"apiVersion"`
		Description string `json:"description"`
		BasePath    string `json:"basePath"`
		Operations  []struct {
			Method  string `json:"method"`
			Path    string `json:"path"`
			Success int    `json:"success"`
		} `json:"operations"`
		Models json.RawMessage `json:"models"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &spec))

	assert.Equal(t, "0.1", spec.APIVersion)
	assert.Equal(t, rolodex.RecordsBasePath, spec.BasePath)
	require.Len(t, spec.Operations, 5)
	assert.NotEmpty(t, spec.Models)
	assert.Contains(t, string(spec.Models), "Record")

	methods := []string{}
	for _, op := range spec.Operations {
		methods = append(methods, fmt.Sprintf("%s %s", op.Method, op.Path))
	}
	assert.Equal(t, []string{
		"GET /records",
		"POST /records",
		"GET /records/{lastName}",
		"PUT /records/{lastName}",
		"DELETE /records/{lastName}",
	}, methods)
}

func TestServerSentEvents(t *testing.T) {
	api := rolodex.NewAPI()
	serverURL, stop := rolodex.TestServe(t, api)
	defer stop()

	recordsURL := serverURL + rolodex.RecordsBasePath

	quitTest := make(chan bool)
	go func() {
		for {
			select {
			case <-quitTest:
				return
			default:
				req, err := http.NewRequest(http.MethodPost, recordsURL, strings.NewReader(`{"fname":"Bill","lname":"Nye"}`))
				if err != nil {
					continue
				}
				req.Header.Set("Content-Type", "application/json")

				resp, err := http.DefaultClient.Do(req)
				if err == nil {
					resp.Body.Close()
				}
			}
		}
	}()

	response, err := http.Get(recordsURL + "/listen")
	quitTest <- true
	require.NoError(t, err)
	defer response.Body.Close()

	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Equal(t, "text/event-stream", response.Header.Get("Content-Type"))

	buf := make([]byte, 4096)
	n, err := response.Body.Read(buf)
	require.NoError(t, err)

	frame := string(buf[:n])
	assert.True(t, strings.HasPrefix(frame, "event: newRecord\ndata: "), frame)
	assert.Contains(t, frame, "<td>Bill</td>")
	assert.Contains(t, frame, "<td>Nye</td>")

	// a closed stream must not wedge later writes
	response.Body.Close()
	resp, _ := doRequest(t, http.MethodPost, recordsURL, `{"fname":"Doug","lname":"Farrell"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}
