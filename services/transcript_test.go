package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateTranscript(t *testing.T) {
	t.Run("short transcripts pass through untouched", func(t *testing.T) {
		assert.Equal(t, "hello", TruncateTranscript("hello", 16000))
	})

	t.Run("exactly at the limit passes through", func(t *testing.T) {
		input := strings.Repeat("a", 100)
		assert.Equal(t, input, TruncateTranscript(input, 100))
	})

	t.Run("long transcripts are cut to the limit plus the marker", func(t *testing.T) {
		input := strings.Repeat("x", 16500)
		got := TruncateTranscript(input, 16000)
		want := strings.Repeat("x", 16000) + TranscriptTruncationMarker
		assert.Equal(t, want, got)
	})

	t.Run("multi-byte characters are never split", func(t *testing.T) {
		input := strings.Repeat("한", 50)
		got := TruncateTranscript(input, 10)
		assert.Equal(t, strings.Repeat("한", 10)+TranscriptTruncationMarker, got)
	})

	t.Run("non-positive limit disables truncation", func(t *testing.T) {
		input := strings.Repeat("y", 500)
		assert.Equal(t, input, TruncateTranscript(input, 0))
	})
}

// newStubFetcher points the fetcher at a local server whose response
// per caption language is scripted by the handler.
func newStubFetcher(srv *httptest.Server) *youtubeTranscriptFetcher {
	return &youtubeTranscriptFetcher{
		client:    &http.Client{Timeout: 2 * time.Second},
		baseURL:   srv.URL,
		languages: []string{"ko", "en"},
	}
}

func TestFetchTranscript(t *testing.T) {
	const watchURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	t.Run("returns the decoded caption text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<transcript><text start="0">hello</text><text start="1">&amp; goodbye</text></transcript>`))
		}))
		defer srv.Close()

		text, err := newStubFetcher(srv).FetchTranscript(context.Background(), watchURL)
		require.NoError(t, err)
		assert.Equal(t, "hello & goodbye", text)
	})

	t.Run("empty track in one language is no-transcript even if a later language errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("lang") == "ko" {
				w.Write([]byte("")) // video exists, no ko captions
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newStubFetcher(srv).FetchTranscript(context.Background(), watchURL)
		assert.ErrorIs(t, err, ErrNoTranscript)
	})

	t.Run("transport failure on every language is fetch-failed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newStubFetcher(srv).FetchTranscript(context.Background(), watchURL)
		assert.ErrorIs(t, err, ErrFetchFailed)
	})

	t.Run("empty tracks in every language is no-transcript", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(""))
		}))
		defer srv.Close()

		_, err := newStubFetcher(srv).FetchTranscript(context.Background(), watchURL)
		assert.ErrorIs(t, err, ErrNoTranscript)
	})

	t.Run("unparseable URL is invalid-url without any request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be made for an invalid URL")
		}))
		defer srv.Close()

		_, err := newStubFetcher(srv).FetchTranscript(context.Background(), "https://example.com/watch?v=abc")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})
}

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/abc123XYZ_-", "abc123XYZ_-"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractVideoID(tc.url)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("rejects non-YouTube URLs", func(t *testing.T) {
		_, err := extractVideoID("https://example.com/watch?v=abc")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("rejects empty URLs", func(t *testing.T) {
		_, err := extractVideoID("  ")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})
}
