package sources

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_note/internal/engine"
)

const testVideoID = "abcDEF12345"

// fakeYouTube serves a watch page and a timedtext endpoint.
func fakeYouTube(t *testing.T, watchHTML func(base string) string, timedtext string, timedtextStatus int) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			if r.URL.Query().Get("v") != testVideoID {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, watchHTML(srv.URL))
		case "/api/timedtext":
			w.WriteHeader(timedtextStatus)
			fmt.Fprint(w, timedtext)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func watchPage(tracksJSON string) func(string) string {
	return func(string) string {
		return `<html><head><title>AI 활용법 - YouTube</title></head><body><script>` +
			`var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":` + tracksJSON + `}},` +
			`"videoDetails":{"shortDescription":"프로그래밍 기초","ownerChannelName":"테스트 채널","lengthSeconds":"720","viewCount":"99"}};` +
			`</script></body></html>`
	}
}

func TestCaptionExtractorSuccess(t *testing.T) {
	srv := fakeYouTube(t,
		watchPage(`[{"baseUrl":"/api/timedtext?v=abcDEF12345&lang=en","languageCode":"en"},`+
			`{"baseUrl":"/api/timedtext?v=abcDEF12345&lang=ko","languageCode":"ko","name":{"simpleText":"한국어"}}]`),
		`<transcript><text start="0" dur="2">첫 문장입니다.</text><text start="2" dur="3">두 번째 &amp; 마지막</text></transcript>`,
		http.StatusOK)

	ex := NewCaptionExtractor(srv.Client(), srv.URL, nil)
	res, err := ex.Extract(t.Context(), testVideoID)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(res.Segments))
	}
	if res.Segments[1].Text != "두 번째 & 마지막" {
		t.Errorf("Segments[1].Text = %q", res.Segments[1].Text)
	}
	if res.Language != "ko" {
		t.Errorf("Language = %q, want ko", res.Language)
	}
	if res.Fallback != nil {
		t.Errorf("Fallback = %+v, want nil when captions exist", res.Fallback)
	}
	if res.Video == nil || res.Video.Title != "AI 활용법" || res.Video.Duration != "12:00" {
		t.Errorf("Video = %+v", res.Video)
	}
}

func TestCaptionExtractorFallbackBranches(t *testing.T) {
	tests := []struct {
		name      string
		page      func(string) string
		timedtext string
		status    int
		wantMsg   string
	}{
		{
			name: "no track list",
			page: func(string) string {
				return `<html><title>AI 활용법 - YouTube</title>"shortDescription":"프로그래밍","lengthSeconds":"60"</html>`
			},
			wantMsg: msgNoTracks,
		},
		{
			name:    "track without baseUrl",
			page:    watchPage(`[{"languageCode":"ko"}]`),
			wantMsg: msgNoTrackURL,
		},
		{
			name:      "payload with no cues",
			page:      watchPage(`[{"baseUrl":"/api/timedtext?v=abcDEF12345","languageCode":"ko"}]`),
			timedtext: `<transcript></transcript>`,
			status:    http.StatusOK,
			wantMsg:   msgParseFailed,
		},
		{
			name:      "payload not found",
			page:      watchPage(`[{"baseUrl":"/api/timedtext?v=abcDEF12345","languageCode":"ko"}]`),
			timedtext: "gone",
			status:    http.StatusNotFound,
			wantMsg:   msgParseFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeYouTube(t, tt.page, tt.timedtext, tt.status)
			ex := NewCaptionExtractor(srv.Client(), srv.URL, []string{"ko"})

			res, err := ex.Extract(t.Context(), testVideoID)
			if err != nil {
				t.Fatalf("Extract returned error for a designed fallback: %v", err)
			}
			if len(res.Segments) != 0 {
				t.Errorf("Segments = %+v, want none", res.Segments)
			}
			if res.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", res.Message, tt.wantMsg)
			}
			if res.Fallback == nil {
				t.Fatal("Fallback is nil")
			}
			if res.Fallback.Title != "AI 활용법" {
				t.Errorf("Fallback.Title = %q", res.Fallback.Title)
			}
			if res.Fallback.PrimaryTopic() != "AI/기술" {
				t.Errorf("PrimaryTopic = %q", res.Fallback.PrimaryTopic())
			}
		})
	}
}

func TestCaptionExtractorPageUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	ex := NewCaptionExtractor(srv.Client(), srv.URL, nil)
	res, err := ex.Extract(t.Context(), testVideoID)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Fallback != nil || len(res.Segments) != 0 {
		t.Errorf("res = %+v, want empty result without fallback", res)
	}
	if res.Message != msgPageUnavailable {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestCaptionExtractorMissingID(t *testing.T) {
	ex := NewCaptionExtractor(nil, "", nil)
	_, err := ex.Extract(t.Context(), "  ")
	if !errors.Is(err, engine.ErrMissingParameter) {
		t.Errorf("err = %v, want ErrMissingParameter", err)
	}
}

func TestResolveTrackURL(t *testing.T) {
	ex := NewCaptionExtractor(nil, "https://www.youtube.com/", nil)
	tests := []struct {
		in, want string
	}{
		{"/api/timedtext?v=x", "https://www.youtube.com/api/timedtext?v=x"},
		{"https://other.example/tt?v=x", "https://other.example/tt?v=x"},
	}
	for _, tt := range tests {
		if got := ex.resolveTrackURL(tt.in); got != tt.want {
			t.Errorf("resolveTrackURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !strings.HasPrefix(ex.baseURL, "https://") || strings.HasSuffix(ex.baseURL, "/") {
		t.Errorf("baseURL = %q", ex.baseURL)
	}
}

func TestCaptionExtractorInnertubeTrackList(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			fmt.Fprint(w, `<html><title>강의 영상 - YouTube</title></html>`)
		case ytInnertubePlayerPath:
			if r.Method != http.MethodPost || r.Header.Get("X-Youtube-Client-Name") != "3" {
				http.Error(w, "bad", http.StatusBadRequest)
				return
			}
			fmt.Fprintf(w, `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":`+
				`[{"baseUrl":"%s/api/timedtext?v=x","languageCode":"en","kind":"asr"}]}}}`, srv.URL)
		case "/api/timedtext":
			fmt.Fprint(w, `<text start="1" dur="1">from innertube</text>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ex := NewCaptionExtractor(srv.Client(), srv.URL, nil)
	res, err := ex.Extract(t.Context(), testVideoID)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Segments) != 1 || res.Segments[0].Text != "from innertube" {
		t.Errorf("Segments = %+v", res.Segments)
	}
	if res.Language != "en" {
		t.Errorf("Language = %q, want en", res.Language)
	}
}
