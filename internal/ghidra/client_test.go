// Uses httptest.NewServer to mock the Ghidra plugin — no real Ghidra needed.
package ghidra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestFetchLines_Success_SplitsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "line1\nline2\nline3")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.FetchLines(context.Background(), "methods", nil)

	want := []string{"line1", "line2", "line3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFetchLines_TrailingNewline_Dropped(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "a\nb\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.FetchLines(context.Background(), "methods", nil)

	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFetchLines_EmptyBody_EmptySlice(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.FetchLines(context.Background(), "methods", nil)

	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestFetchLines_QueryParams_Forwarded(t *testing.T) {
	t.Parallel()

	var gotOffset, gotLimit, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOffset = r.URL.Query().Get("offset")
		gotLimit = r.URL.Query().Get("limit")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	c.FetchLines(context.Background(), "methods", map[string]string{"offset": "10", "limit": "50"})

	if gotPath != "/methods" {
		t.Errorf("expected path /methods, got %q", gotPath)
	}
	if gotOffset != "10" || gotLimit != "50" {
		t.Errorf("expected offset=10 limit=50, got offset=%q limit=%q", gotOffset, gotLimit)
	}
}

func TestFetchLines_ErrorStatus_NormalizedToText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Not Found")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.FetchLines(context.Background(), "nope", nil)

	want := []string{"Error 404: Not Found"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFetchLines_TransportFailure_NormalizedToText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, 0, nil)
	got := c.FetchLines(context.Background(), "methods", nil)

	if len(got) != 1 || !strings.HasPrefix(got[0], "Request failed: ") {
		t.Fatalf("expected single 'Request failed' entry, got %v", got)
	}
}

func TestSubmitPayload_FormData_Forwarded(t *testing.T) {
	t.Parallel()

	var gotKey, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotKey = r.PostForm.Get("key")
		gotContentType = r.Header.Get("Content-Type")
		fmt.Fprint(w, "Success response")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.SubmitPayload(context.Background(), "endpoint", map[string]string{"key": "value"})

	if got != "Success response" {
		t.Errorf("expected body passed through, got %q", got)
	}
	if gotKey != "value" {
		t.Errorf("expected form key=value, got %q", gotKey)
	}
	if !strings.HasPrefix(gotContentType, "application/x-www-form-urlencoded") {
		t.Errorf("expected form encoding, got %q", gotContentType)
	}
}

func TestSubmitPayload_RawString_SentVerbatim(t *testing.T) {
	t.Parallel()

	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.SubmitPayload(context.Background(), "decompile", "main")

	if got != "ok" {
		t.Errorf("expected 'ok', got %q", got)
	}
	if gotBody != "main" {
		t.Errorf("expected raw body 'main', got %q", gotBody)
	}
}

func TestSubmitPayload_ErrorStatus_NormalizedToText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "Internal Server Error")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.SubmitPayload(context.Background(), "endpoint", map[string]string{})

	if got != "Error 500: Internal Server Error" {
		t.Fatalf("expected normalized error, got %q", got)
	}
}

func TestSubmitPayload_TransportFailure_NormalizedToText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.SubmitPayload(context.Background(), "endpoint", map[string]string{})

	if !strings.HasPrefix(got, "Request failed: ") {
		t.Fatalf("expected 'Request failed' result, got %q", got)
	}
}

func TestSubmitPayload_UnsupportedType_NoCall(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.SubmitPayload(context.Background(), "endpoint", 42)

	if !strings.HasPrefix(got, "Request failed: unsupported payload type") {
		t.Errorf("expected unsupported payload result, got %q", got)
	}
	if calls != 0 {
		t.Errorf("expected no network call, got %d", calls)
	}
}

func TestSetTimeout_AppliesToSubsequentCalls(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, "too late")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	c.SetTimeout(20 * time.Millisecond)

	got := c.FetchLines(context.Background(), "slow", nil)
	if len(got) != 1 || !strings.HasPrefix(got[0], "Request failed: ") {
		t.Errorf("expected timeout as 'Request failed', got %v", got)
	}

	post := c.SubmitPayload(context.Background(), "slow", map[string]string{})
	if !strings.HasPrefix(post, "Request failed: ") {
		t.Errorf("expected timeout as 'Request failed', got %q", post)
	}
}

func TestSetBaseURL_RedirectsSubsequentCalls(t *testing.T) {
	t.Parallel()

	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "first")
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "second")
	}))
	defer second.Close()

	c := NewClient(first.URL, 0, nil)
	if got := c.FetchLines(context.Background(), "x", nil); !reflect.DeepEqual(got, []string{"first"}) {
		t.Fatalf("expected first server response, got %v", got)
	}

	c.SetBaseURL(second.URL)
	if got := c.FetchLines(context.Background(), "x", nil); !reflect.DeepEqual(got, []string{"second"}) {
		t.Fatalf("expected second server response, got %v", got)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient("", 0, nil)
	if c.BaseURL() != DefaultServerURL {
		t.Errorf("expected default base URL %q, got %q", DefaultServerURL, c.BaseURL())
	}
	if c.Timeout() != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, c.Timeout())
	}
}

func TestJoinURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base, endpoint, want string
	}{
		{"http://127.0.0.1:8080/", "methods", "http://127.0.0.1:8080/methods"},
		{"http://127.0.0.1:8080", "methods", "http://127.0.0.1:8080/methods"},
		{"http://127.0.0.1:8080/", "/bsim/status", "http://127.0.0.1:8080/bsim/status"},
	}
	for _, tc := range cases {
		if got := joinURL(tc.base, tc.endpoint); got != tc.want {
			t.Errorf("joinURL(%q, %q) = %q, want %q", tc.base, tc.endpoint, got, tc.want)
		}
	}
}
