package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStandardClient_Wraps(t *testing.T) {
	custom := &http.Client{}
	if c := NewStandardClient(custom); c.Client != custom {
		t.Error("expected custom client to be wrapped")
	}
	if c := NewStandardClient(nil); c.Client != http.DefaultClient {
		t.Error("expected nil to select http.DefaultClient")
	}
}

func TestStandardClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := NewStandardClient(srv.Client()).Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "[]" {
		t.Errorf("got body %q", body)
	}
}

func TestMockHTTPClient_QueuedResponses(t *testing.T) {
	mock := NewMockHTTPClient().
		AddResponse(http.StatusOK, `[{"angle":1}]`).
		AddErrorResponse(errors.New("connection refused")).
		AddResponse(http.StatusBadGateway, "upstream down")

	req, _ := http.NewRequest(http.MethodGet, "http://origin/api/scan_data", nil)

	resp, err := mock.Do(req)
	if err != nil {
		t.Fatalf("first Do: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != `[{"angle":1}]` {
		t.Errorf("first response = %d %q", resp.StatusCode, body)
	}

	if _, err := mock.Do(req); err == nil || err.Error() != "connection refused" {
		t.Errorf("second Do error = %v", err)
	}

	resp, err = mock.Do(req)
	if err != nil {
		t.Fatalf("third Do: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("third status = %d", resp.StatusCode)
	}

	// queue exhausted: empty 200
	resp, err = mock.Do(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Errorf("default response = %v, %v", resp, err)
	}

	if mock.RequestCount() != 4 {
		t.Errorf("got %d requests, want 4", mock.RequestCount())
	}
	if mock.LastRequest() != req {
		t.Error("LastRequest did not return the last request")
	}
}

func TestMockHTTPClient_DoFunc(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusTeapot, Body: io.NopCloser(strings.NewReader(""))}, nil
	}
	req, _ := http.NewRequest(http.MethodGet, "http://x", nil)
	resp, err := mock.Do(req)
	if err != nil || resp.StatusCode != http.StatusTeapot {
		t.Errorf("got %v, %v", resp, err)
	}
	if NewMockHTTPClient().LastRequest() != nil {
		t.Error("expected nil LastRequest on a fresh mock")
	}
}

func TestCheckStatus(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://origin/api/scan_data", nil)

	ok := &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(strings.NewReader("")), Request: req}
	if err := CheckStatus(ok); err != nil {
		t.Errorf("2xx should pass, got %v", err)
	}

	bad := &http.Response{
		StatusCode: http.StatusInternalServerError,
		Body:       io.NopCloser(strings.NewReader("  boom\n")),
		Request:    req,
	}
	err := CheckStatus(bad)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if se.StatusCode != 500 || se.Body != "boom" || se.URL != "http://origin/api/scan_data" {
		t.Errorf("unexpected StatusError %+v", se)
	}
	if want := "GET http://origin/api/scan_data: unexpected status 500: boom"; se.Error() != want {
		t.Errorf("Error() = %q, want %q", se.Error(), want)
	}

	long := &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader(strings.Repeat("x", 1000)))}
	if err := CheckStatus(long); !errors.As(err, &se) || len(se.Body) != maxErrorBody {
		t.Errorf("body should be truncated to %d bytes, got %v", maxErrorBody, err)
	}
	if (&StatusError{URL: "u", StatusCode: 404}).Error() != "GET u: unexpected status 404" {
		t.Error("unexpected message without body")
	}
}
