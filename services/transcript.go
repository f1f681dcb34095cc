package services

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors for the transcript fetcher boundary. The
// orchestrator only cares which of the three happened; the wrapped
// detail is for logs.
var (
	ErrInvalidURL   = errors.New("invalid-url")
	ErrNoTranscript = errors.New("no-transcript")
	ErrFetchFailed  = errors.New("fetch-failed")
)

// TranscriptFetcher is the external-collaborator boundary for pulling
// a video's spoken text.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoURL string) (string, error)
}

type youtubeTranscriptFetcher struct {
	client  *http.Client
	baseURL string
	// Caption languages tried in order. The app's audience is Korean
	// first, so ko precedes en.
	languages []string
}

// NewYouTubeTranscriptFetcher creates a fetcher backed by YouTube's
// timedtext endpoint.
func NewYouTubeTranscriptFetcher() TranscriptFetcher {
	return &youtubeTranscriptFetcher{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   "https://www.youtube.com/api/timedtext",
		languages: []string{"ko", "en"},
	}
}

// FetchTranscript resolves the video ID from any of the common YouTube
// URL forms and downloads its caption track. It returns ErrInvalidURL
// for unrecognizable URLs, ErrNoTranscript when the video has no
// captions in any tried language, and ErrFetchFailed for transport
// errors.
func (f *youtubeTranscriptFetcher) FetchTranscript(ctx context.Context, videoURL string) (string, error) {
	videoID, err := extractVideoID(videoURL)
	if err != nil {
		log.Printf("WARN: [TranscriptFetcher] Could not extract video ID from URL '%s': %v", videoURL, err)
		return "", err
	}

	// An empty track is a definitive "this video has no captions in
	// that language" answer; a transport error is not. Track the two
	// separately so a flaky request for a later language cannot mask
	// an earlier empty track and misreport no-transcript as a fetch
	// failure.
	var lastErr error
	sawEmptyTrack := false
	for _, lang := range f.languages {
		text, fetchErr := f.fetchTimedText(ctx, videoID, lang)
		if fetchErr == nil && text != "" {
			log.Printf("INFO: [TranscriptFetcher] Fetched %d chars of '%s' captions for video %s.", len(text), lang, videoID)
			return text, nil
		}
		if fetchErr == nil {
			sawEmptyTrack = true
			continue
		}
		lastErr = fetchErr
	}

	if sawEmptyTrack {
		log.Printf("INFO: [TranscriptFetcher] Video %s has no captions in languages %v.", videoID, f.languages)
		return "", fmt.Errorf("%w: no captions for video %s", ErrNoTranscript, videoID)
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: no captions for video %s", ErrNoTranscript, videoID)
}

// timedTextDoc is the caption XML returned by the timedtext endpoint.
type timedTextDoc struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Body string `xml:",chardata"`
	} `xml:"text"`
}

func (f *youtubeTranscriptFetcher) fetchTimedText(ctx context.Context, videoID, lang string) (string, error) {
	endpoint := fmt.Sprintf("%s?v=%s&lang=%s", f.baseURL, url.QueryEscape(videoID), url.QueryEscape(lang))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("WARN: [TranscriptFetcher] Request for video %s (lang %s) failed: %v", videoID, lang, err)
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: timedtext returned status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	// An empty body means the video has no caption track in this
	// language. That is the common case, not a transport failure.
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", nil
	}

	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: malformed caption document: %v", ErrNoTranscript, err)
	}

	var sb strings.Builder
	for _, t := range doc.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Body))
		if line == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(line)
	}
	return sb.String(), nil
}

// extractVideoID handles the watch, youtu.be, shorts and embed URL
// forms.
func extractVideoID(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := strings.Split(strings.TrimPrefix(u.Path, prefix), "/")[0]; id != "" {
					return id, nil
				}
			}
		}
	case "youtu.be":
		if id := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")[0]; id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: not a recognizable YouTube URL: %s", ErrInvalidURL, rawURL)
}

// TranscriptTruncationMarker is appended whenever a transcript is cut
// to the configured character budget.
const TranscriptTruncationMarker = "\n...(truncated)"

// TruncateTranscript bounds a transcript to maxChars characters,
// appending the truncation marker when anything was cut. Truncation is
// by rune so a multi-byte character is never split.
func TruncateTranscript(transcript string, maxChars int) string {
	if maxChars <= 0 {
		return transcript
	}
	runes := []rune(transcript)
	if len(runes) <= maxChars {
		return transcript
	}
	return string(runes[:maxChars]) + TranscriptTruncationMarker
}
