package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchURL(t *testing.T) {
	got := SearchURL("16x25x1 furnace filter")
	if !strings.Contains(got, "k=16x25x1+furnace+filter") {
		t.Errorf("SearchURL = %q, search term not escaped into query", got)
	}
}

func TestFetchThumbnail(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		want    string
		wantErr bool
	}{
		{
			"og:image",
			`<html><head><meta property="og:image" content="https://img.example.com/a.jpg"></head><body></body></html>`,
			"https://img.example.com/a.jpg",
			false,
		},
		{
			"twitter:image fallback",
			`<html><head><meta name="twitter:image" content="https://img.example.com/b.jpg"/></head></html>`,
			"https://img.example.com/b.jpg",
			false,
		},
		{
			"first image wins",
			`<head><meta property="og:image" content="first.jpg"><meta property="og:image" content="second.jpg"></head>`,
			"first.jpg",
			false,
		},
		{
			"no image metadata",
			`<html><head><title>results</title></head><body><img src="x.jpg"></body></html>`,
			"",
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.page))
			}))
			defer srv.Close()

			got, err := New(nil).FetchThumbnail(context.Background(), srv.URL)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchThumbnail: %v", err)
			}
			if got != tt.want {
				t.Errorf("thumbnail = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchThumbnail_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := New(nil).FetchThumbnail(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 429 response")
	}
}
