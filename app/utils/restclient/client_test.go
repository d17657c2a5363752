package restclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRestClient(t *testing.T) {
	c := NewRestClient("http://test", map[string]string{"x": "y"})
	if c.baseURL != "http://test" {
		t.Fail()
	}
	if c.headers["x"] != "y" {
		t.Fail()
	}
	if c.httpClient == nil {
		t.Fail()
	}
}

func TestRestClientSetsHeaders(t *testing.T) {
	var gotAuth, gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c := NewRestClient(ts.URL, map[string]string{"Authorization": "Bearer token"})
	body, status, err := c.Post(context.Background(), "/", map[string]string{"a": "b"}, nil)
	if err != nil || status != http.StatusOK || string(body) != "ok" {
		t.Fatalf("body=%s status=%d err=%v", body, status, err)
	}
	if gotAuth != "Bearer token" || gotContentType != "application/json" {
		t.Fatalf("auth=%q content-type=%q", gotAuth, gotContentType)
	}
}

func TestRestClientGet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c := NewRestClient(ts.URL, nil)
	body, status, err := c.Get(context.Background(), "/", nil)
	if err != nil || status != http.StatusOK || string(body) != "ok" {
		t.Fatalf("body=%s status=%d err=%v", body, status, err)
	}
}

func TestRestClientContextCancel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewRestClient(ts.URL, nil)
	if _, _, err := c.Get(ctx, "/", nil); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
