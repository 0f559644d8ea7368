package network

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want %v", client.timeout, 30*time.Second)
	}
	if client.maxRedirects != 10 {
		t.Errorf("default maxRedirects = %v, want %v", client.maxRedirects, 10)
	}
	if client.userAgent != DefaultUserAgent {
		t.Errorf("default userAgent = %q, want %q", client.userAgent, DefaultUserAgent)
	}
}

func TestClientOptions(t *testing.T) {
	client, err := NewClient(
		WithTimeout(60*time.Second),
		WithMaxRedirects(5),
		WithUserAgent("TestAgent/1.0"),
		WithMaxBodySize(4),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.timeout != 60*time.Second {
		t.Errorf("timeout = %v, want %v", client.timeout, 60*time.Second)
	}
	if client.maxRedirects != 5 {
		t.Errorf("maxRedirects = %v, want %v", client.maxRedirects, 5)
	}
	if client.userAgent != "TestAgent/1.0" {
		t.Errorf("userAgent = %v, want %v", client.userAgent, "TestAgent/1.0")
	}
	if client.maxBodySize != 4 {
		t.Errorf("maxBodySize = %v, want 4", client.maxBodySize)
	}
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "image/png" {
			t.Errorf("Accept = %q, want image/png", got)
		}
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("User-Agent = %q, want %q", got, DefaultUserAgent)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("PNG"))
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL, "image/png")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !resp.OK() {
		t.Errorf("StatusCode = %v, want 2xx", resp.StatusCode)
	}
	if string(resp.Body) != "PNG" {
		t.Errorf("Body = %q, want %q", string(resp.Body), "PNG")
	}
	if !IsImageContentType(resp.ContentType) {
		t.Errorf("ContentType = %q, want an image type", resp.ContentType)
	}
}

func TestClientGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed"))
		gz.Close()
	}))
	defer server.Close()

	client, _ := NewClient()
	resp, err := client.Get(context.Background(), server.URL, "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(resp.Body) != "compressed" {
		t.Errorf("Body = %q, want %q", string(resp.Body), "compressed")
	}
}

func TestClientBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	client, _ := NewClient(WithMaxBodySize(4))
	resp, err := client.Get(context.Background(), server.URL, "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(resp.Body) != "0123" {
		t.Errorf("Body = %q, want %q", string(resp.Body), "0123")
	}
}

func TestClientRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old.png" {
			http.Redirect(w, r, server.URL+"/new.png", http.StatusFound)
			return
		}
		w.Write([]byte("final"))
	}))
	defer server.Close()

	client, _ := NewClient()
	resp, err := client.Get(context.Background(), server.URL+"/old.png", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.URL.Path != "/new.png" {
		t.Errorf("final URL path = %q, want /new.png", resp.URL.Path)
	}

	noFollow, _ := NewClient(WithFollowRedirect(false))
	resp, err = noFollow.Get(context.Background(), server.URL+"/old.png", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("StatusCode = %v, want %v", resp.StatusCode, http.StatusFound)
	}
}

func TestClientTooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.String(), http.StatusFound)
	}))
	defer server.Close()

	client, _ := NewClient(WithMaxRedirects(2))
	if _, err := client.Get(context.Background(), server.URL, ""); err == nil {
		t.Error("expected an error after too many redirects")
	}
}

func TestClientCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
	}))
	defer server.Close()

	client, _ := NewClient()
	if _, err := client.Get(context.Background(), server.URL, ""); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	u, _ := url.Parse(server.URL)
	cookies := client.Cookies(u)
	if len(cookies) != 1 || cookies[0].Value != "abc" {
		t.Errorf("Cookies = %v, want session=abc", cookies)
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		input         string
		wantMediaType string
		wantCharset   string
	}{
		{"", "application/octet-stream", ""},
		{"image/png", "image/png", ""},
		{"text/html; charset=UTF-8", "text/html", "utf-8"},
		{`text/plain; charset="iso-8859-1"`, "text/plain", "iso-8859-1"},
	}

	for _, tt := range tests {
		mediaType, charset := ParseContentType(tt.input)
		if mediaType != tt.wantMediaType || charset != tt.wantCharset {
			t.Errorf("ParseContentType(%q) = (%q, %q), want (%q, %q)",
				tt.input, mediaType, charset, tt.wantMediaType, tt.wantCharset)
		}
	}

	if !IsImageContentType("Image/SVG+xml") || IsImageContentType("text/html") {
		t.Error("IsImageContentType misclassified a media type")
	}
}
