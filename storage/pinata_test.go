package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPinataUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-jwt" {
			t.Errorf("Authorization = %q", got)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "demo.webm" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "audio-bytes" {
			t.Errorf("payload = %q", data)
		}
		w.Write([]byte(`{"IpfsHash":"QmTestHash","PinSize":11,"Timestamp":"2026-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewPinataClient(srv.URL, "test-jwt")
	cid, err := c.Upload(context.Background(), "demo.webm", []byte("audio-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if cid != "QmTestHash" {
		t.Errorf("cid = %q, want QmTestHash", cid)
	}
}

func TestPinataUploadEmptyPayload(t *testing.T) {
	c := NewPinataClient("http://localhost:0", "jwt")
	_, err := c.Upload(context.Background(), "empty.webm", nil)
	if !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("error = %v, want ErrEmptyPayload", err)
	}
}

func TestPinataUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid jwt"}`))
	}))
	defer srv.Close()

	c := NewPinataClient(srv.URL, "bad-jwt")
	_, err := c.Upload(context.Background(), "demo.webm", []byte("x"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("error = %v, want ErrUploadFailed", err)
	}
}

func TestPinataUploadMissingHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"PinSize":1}`))
	}))
	defer srv.Close()

	c := NewPinataClient(srv.URL, "jwt")
	_, err := c.Upload(context.Background(), "demo.webm", []byte("x"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("error = %v, want ErrUploadFailed", err)
	}
}

func TestPinataUploadNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立刻关闭，模拟不可达

	c := NewPinataClient(srv.URL, "jwt")
	_, err := c.Upload(context.Background(), "demo.webm", []byte("x"))
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}
