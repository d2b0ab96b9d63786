package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/rnaviz/pkg/pipeline"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := httptest.NewServer(New(runner, logger, cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID", resp.Header.Get(RequestIDHeader))
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, Config{})
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/health", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("X-Request-ID = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid\n")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid\n" || got == "" {
		t.Errorf("malformed id was echoed: %q", got)
	}
}

func TestRender(t *testing.T) {
	srv := newTestServer(t, Config{})
	tests := []struct {
		name        string
		body        string
		contentType string
		contains    string
	}{
		{"svg default", `{"sequence":"augc","pairs":[0,3]}`, "image/svg+xml", ">A0<"},
		{"string pairs", `{"sequence":"AUGC","pairs":"0,3","format":"dot"}`, "text/vnd.graphviz", `"A0" -- "C3"`},
		{"json", `{"sequence":"AUGC","pairs":[0,3],"format":"json","options":{"mode":"circular"}}`, "application/json", `"dot_bracket": "(..)"`},
		{"png", `{"sequence":"AUGC","pairs":[],"format":"png","options":{"scale":1}}`, "image/png", "PNG"},
		{"legend", `{"sequence":"AUGC","format":"svg","options":{"legend":true,"title":"t"}}`, "image/svg+xml", `class="legend"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, "/api/v1/render", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %+v", resp.StatusCode, decodeError(t, resp))
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			data, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(data), tt.contains) {
				t.Errorf("body missing %q:\n%.300s", tt.contains, data)
			}
			if resp.Header.Get(CacheHeader) != "miss" {
				t.Errorf("cache header = %q", resp.Header.Get(CacheHeader))
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	srv := newTestServer(t, Config{MaxSequenceLen: 10})
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{"sequence":`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown field", `{"sequence":"AU","colour":"red"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"trailing data", `{"sequence":"AU"} {}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"alphabet", `{"sequence":"AUXC"}`, http.StatusUnprocessableEntity, "INVALID_ALPHABET"},
		{"odd pairs", `{"sequence":"AUGC","pairs":[0,3,1]}`, http.StatusUnprocessableEntity, "MALFORMED_PAIRING"},
		{"bad pair string", `{"sequence":"AUGC","pairs":"0,x"}`, http.StatusUnprocessableEntity, "MALFORMED_PAIRING"},
		{"out of range", `{"sequence":"AUGC","pairs":[0,9]}`, http.StatusUnprocessableEntity, "INDEX_OUT_OF_RANGE"},
		{"self pairing", `{"sequence":"AUGC","pairs":[1,1]}`, http.StatusUnprocessableEntity, "SELF_PAIRING"},
		{"empty sequence", `{"sequence":""}`, http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{"too long", `{"sequence":"AUGCAUGCAUGC"}`, http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{"bad format", `{"sequence":"AU","format":"gif"}`, http.StatusUnprocessableEntity, "INVALID_FORMAT"},
		{"two formats", `{"sequence":"AU","format":"svg,png"}`, http.StatusUnprocessableEntity, "INVALID_FORMAT"},
		{"bad mode", `{"sequence":"AU","options":{"mode":"spiral"}}`, http.StatusUnprocessableEntity, "INVALID_LAYOUT_MODE"},
		{"bad color", `{"sequence":"AU","options":{"background":"sparkly"}}`, http.StatusUnprocessableEntity, "INVALID_COLOR"},
		{"oversized canvas", `{"sequence":"AU","format":"png","options":{"width":200000,"height":200000,"scale":8}}`, http.StatusUnprocessableEntity, "INVALID_CONFIG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, "/api/v1/render", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decodeError(t, resp)
			if body.Error.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", body.Error.Code, tt.code, body.Error.Message)
			}
			if body.RequestID == "" || body.RequestID != resp.Header.Get(RequestIDHeader) {
				t.Errorf("request id %q does not match header %q", body.RequestID, resp.Header.Get(RequestIDHeader))
			}
		})
	}
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := post(t, srv, "/api/v1/layout", `{"sequence":"GGGAAAUCC","pairs":[0,8,1,7,2,6]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %+v", resp.StatusCode, decodeError(t, resp))
	}
	var body LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.DotBracket != "(((...)))" {
		t.Errorf("dot_bracket = %q", body.DotBracket)
	}
	if body.Layout == nil || len(body.Layout.Positions) != 9 || len(body.Layout.Labels) != 9 {
		t.Fatalf("layout = %+v", body.Layout)
	}
	if body.Layout.Mode != "force_directed" || body.Layout.Seed != 42 {
		t.Errorf("mode %q seed %d", body.Layout.Mode, body.Layout.Seed)
	}
	if body.Warning != "" || resp.Header.Get(WarningHeader) != "" {
		t.Error("connected structure reported a warning")
	}
}

func TestDefaultsFromConfig(t *testing.T) {
	srv := newTestServer(t, Config{Defaults: pipeline.Options{Mode: "circular", Seed: 7}})
	resp := post(t, srv, "/api/v1/layout", `{"sequence":"AUGC"}`)
	var body LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Layout.Mode != "circular" || body.Layout.Seed != 7 {
		t.Errorf("server defaults not applied: %+v", body.Layout)
	}

	resp = post(t, srv, "/api/v1/layout", `{"sequence":"AUGC","options":{"mode":"force_directed"}}`)
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Layout.Mode != "force_directed" {
		t.Errorf("request option did not override default: %q", body.Layout.Mode)
	}
}

func TestRouting(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/api/v1/render")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET render status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d", resp.StatusCode)
	}
}

func TestBodyTooLarge(t *testing.T) {
	srv := newTestServer(t, Config{MaxBodyBytes: 64})
	resp := post(t, srv, "/api/v1/render", `{"sequence":"`+strings.Repeat("A", 200)+`"}`)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(io.EOF); got != http.StatusInternalServerError {
		t.Errorf("uncoded error status = %d", got)
	}
}
