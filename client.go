package rolodex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Response wraps an HTTP response from the API and allows easy access to the
// decoded response type (if JSON), the ContentType, string Body, and the
// original response
type Response[T any] struct {
	ContentType string
	Body        string
	Data        T
	Response    *http.Response
}

func newResponse[T any](resp *http.Response, expectedStatusCode int) (*Response[T], error) {
	result := &Response[T]{
		ContentType: resp.Header.Get("Content-Type"),
		Response:    resp,
	}

	if resp.Body != nil {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("error decoding error response: %w", err)
		}
		result.Body = string(body)
	}

	if resp.StatusCode != expectedStatusCode && expectedStatusCode != 0 {
		if result.Body == "" {
			return nil, fmt.Errorf("unexpected status and no body: %d", resp.StatusCode)
		}

		var httpErr *ErrResponse
		err := json.Unmarshal([]byte(result.Body), &httpErr)
		if err != nil {
			return nil, fmt.Errorf("error decoding error response %q: %w", result.Body, err)
		}
		httpErr.HTTPStatusCode = resp.StatusCode
		return nil, httpErr
	}

	if result.ContentType == "application/json" {
		err := json.Unmarshal([]byte(result.Body), &result.Data)
		if err != nil {
			return nil, fmt.Errorf("error decoding response body %q: %w", result.Body, err)
		}
	}

	return result, nil
}

// Fprint writes the Response body to the provided Writer. If the ContentType is
// JSON, it will JSON encode the body. Setting pretty=true will print indented JSON.
func (sr *Response[T]) Fprint(out io.Writer, pretty bool) error {
	if sr == nil {
		_, err := fmt.Fprint(out, "null")
		return err
	}

	var err error
	switch sr.ContentType {
	case "application/json":
		encoder := json.NewEncoder(out)
		if pretty {
			encoder.SetIndent("", "\t")
		}
		err = encoder.Encode(sr.Data)
	default:
		_, err = fmt.Fprint(out, sr.Body)
	}
	return err
}

// RequestEditor is a function that can modify the HTTP request before sending
type RequestEditor = func(*http.Request) error

var DefaultRequestEditor RequestEditor = func(r *http.Request) error {
	return nil
}

// Client is used to interact with the records API over HTTP
type Client struct {
	Address string

	base          string
	client        *http.Client
	requestEditor RequestEditor
}

// NewClient initializes a Client targeting the API at the provided address
func NewClient(addr string) *Client {
	return &Client{
		addr,
		strings.TrimLeft(RecordsBasePath, "/"),
		http.DefaultClient,
		DefaultRequestEditor,
	}
}

// SetHTTPClient allows overriding the Client's HTTP client with a custom one
func (c *Client) SetHTTPClient(client *http.Client) *Client {
	c.client = client
	return c
}

// SetRequestEditor sets a request editor function that is used to modify all
// requests before sending. This is useful for adding custom request headers
func (c *Client) SetRequestEditor(requestEditor RequestEditor) *Client {
	c.requestEditor = requestEditor
	return c
}

// Get will get a record by last name
func (c *Client) Get(ctx context.Context, lastName string) (*Response[*Record], error) {
	req, err := c.GetRequest(ctx, lastName)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	result, err := MakeRequest[*Record](req, c.client, http.StatusOK, c.requestEditor)
	if err != nil {
		return nil, fmt.Errorf("error getting record: %w", err)
	}

	return result, nil
}

// GetRequest creates a request that can be used to get a record
func (c *Client) GetRequest(ctx context.Context, lastName string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, c.URL(lastName), http.NoBody)
}

// GetAll gets all records from the API
func (c *Client) GetAll(ctx context.Context, rawQuery string) (*Response[Records], error) {
	req, err := c.GetAllRequest(ctx, rawQuery)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	result, err := MakeRequest[Records](req, c.client, http.StatusOK, c.requestEditor)
	if err != nil {
		return nil, fmt.Errorf("error getting all records: %w", err)
	}

	return result, nil
}

// GetAllRequest creates a request that can be used to get all records
func (c *Client) GetAllRequest(ctx context.Context, rawQuery string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(""), http.NoBody)
	if err != nil {
		return nil, err
	}

	req.URL.RawQuery = rawQuery

	return req, nil
}

// Post makes a POST request to create or replace a record
func (c *Client) Post(ctx context.Context, record *Record) (*Response[*Record], error) {
	var body bytes.Buffer
	err := json.NewEncoder(&body).Encode(record)
	if err != nil {
		return nil, fmt.Errorf("error encoding request body: %w", err)
	}

	return c.post(ctx, &body)
}

// PostRequest creates a request that can be used to POST a record
func (c *Client) PostRequest(ctx context.Context, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(""), body)
	if err != nil {
		return nil, err
	}

	req.Header.Add("Content-Type", "application/json")

	return req, nil
}

// PostRaw makes a POST request using the provided string as the body
func (c *Client) PostRaw(ctx context.Context, body string) (*Response[*Record], error) {
	return c.post(ctx, bytes.NewBufferString(body))
}

func (c *Client) post(ctx context.Context, body io.Reader) (*Response[*Record], error) {
	req, err := c.PostRequest(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	result, err := MakeRequest[*Record](req, c.client, http.StatusCreated, c.requestEditor)
	if err != nil {
		return nil, fmt.Errorf("error posting record: %w", err)
	}

	return result, nil
}

// Put makes a PUT request to update a record by its last name
func (c *Client) Put(ctx context.Context, record *Record) (*Response[*Record], error) {
	var body bytes.Buffer
	err := json.NewEncoder(&body).Encode(record)
	if err != nil {
		return nil, fmt.Errorf("error encoding request body: %w", err)
	}

	return c.put(ctx, record.GetID(), &body)
}

// PutRequest creates a request that can be used to PUT a record
func (c *Client) PutRequest(ctx context.Context, body io.Reader, lastName string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.URL(lastName), body)
	if err != nil {
		return nil, err
	}

	req.Header.Add("Content-Type", "application/json")

	return req, nil
}

// PutRaw makes a PUT request to update a record by last name. It uses the
// provided string as the request body
func (c *Client) PutRaw(ctx context.Context, lastName, body string) (*Response[*Record], error) {
	return c.put(ctx, lastName, bytes.NewBufferString(body))
}

func (c *Client) put(ctx context.Context, lastName string, body io.Reader) (*Response[*Record], error) {
	req, err := c.PutRequest(ctx, body, lastName)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	result, err := MakeRequest[*Record](req, c.client, http.StatusCreated, c.requestEditor)
	if err != nil {
		return nil, fmt.Errorf("error putting record: %w", err)
	}

	return result, nil
}

// Delete makes a DELETE request to delete a record by last name
func (c *Client) Delete(ctx context.Context, lastName string) (*Response[*Record], error) {
	req, err := c.DeleteRequest(ctx, lastName)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := MakeRequest[*Record](req, c.client, http.StatusNoContent, c.requestEditor)
	if err != nil {
		return nil, fmt.Errorf("error deleting record: %w", err)
	}

	return resp, nil
}

// DeleteRequest creates a request that can be used to delete a record
func (c *Client) DeleteRequest(ctx context.Context, lastName string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodDelete, c.URL(lastName), http.NoBody)
}

// URL gets the record URL based on the provided last name. An empty last name
// targets the whole collection
func (c *Client) URL(lastName string) string {
	url := fmt.Sprintf("%s/%s", c.Address, c.base)
	if lastName != "" {
		url += fmt.Sprintf("/%s", lastName)
	}

	return url
}

// MakeRequest generically sends an HTTP request after calling the request
// editor and checks the response code. It returns a Response which contains the
// http.Response after extracting the body to Body string and JSON decoding the
// type into Data if the response is JSON
func MakeRequest[T any](req *http.Request, client *http.Client, expectedStatusCode int, requestEditor RequestEditor) (*Response[T], error) {
	if requestEditor != nil {
		err := requestEditor(req)
		if err != nil {
			return nil, fmt.Errorf("error returned from request editor: %w", err)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}

	return newResponse[T](resp, expectedStatusCode)
}
