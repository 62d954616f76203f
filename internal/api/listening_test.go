package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"progression-engine/internal/config"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ListeningClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{ListeningAPIURL: srv.URL + "/2.0/", ListeningAPIKey: "test-key"}
	return NewListeningClient(cfg, zerolog.Nop())
}

func TestRecentPlaysPaginates(t *testing.T) {
	var pages []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("method") != "user.getrecenttracks" || q.Get("api_key") != "test-key" || q.Get("user") != "armyfan" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		pages = append(pages, q.Get("page"))

		w.Header().Set("Content-Type", "application/json")
		switch q.Get("page") {
		case "1":
			fmt.Fprint(w, `{"recenttracks":{"track":[
				{"name":"Dynamite","artist":{"#text":"BTS"},"album":{"#text":"BE"},"@attr":{"nowplaying":"true"}},
				{"name":"Butter","artist":{"#text":"BTS"},"album":{"#text":"Butter"},"date":{"uts":"1714557600"}}
			],"@attr":{"page":"1","totalPages":"2","perPage":"200","total":"2"}}}`)
		default:
			fmt.Fprint(w, `{"recenttracks":{"track":
				{"name":"Spring Day","artist":{"#text":"BTS"},"album":{"#text":"You Never Walk Alone"},"date":{"uts":"1714561200"}}
			,"@attr":{"page":"2","totalPages":"2","perPage":"200","total":"2"}}}`)
		}
	})

	plays, err := client.RecentPlays(context.Background(), "armyfan", time.Unix(1714521600, 0))
	if err != nil {
		t.Fatalf("RecentPlays() error = %v", err)
	}

	if len(pages) != 2 {
		t.Errorf("requested pages = %v, want 2 pages", pages)
	}
	if len(plays) != 2 {
		t.Fatalf("len(plays) = %d, want 2 (now playing skipped)", len(plays))
	}
	if plays[0].TrackName != "Butter" || plays[1].TrackName != "Spring Day" {
		t.Errorf("plays = %+v, want Butter then Spring Day", plays)
	}
	if want := time.Unix(1714557600, 0).UTC(); !plays[0].PlayedAt.Equal(want) {
		t.Errorf("PlayedAt = %v, want %v", plays[0].PlayedAt, want)
	}
	if plays[1].AlbumName != "You Never Walk Alone" {
		t.Errorf("AlbumName = %q, want %q", plays[1].AlbumName, "You Never Walk Alone")
	}
}

func TestRecentPlaysProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := client.RecentPlays(context.Background(), "armyfan", time.Now()); err == nil {
		t.Fatal("RecentPlays() error = nil, want error on 503")
	}
}

func TestRecentPlaysAPIErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":6,"message":"User not found"}`)
	})

	if _, err := client.RecentPlays(context.Background(), "nobody", time.Now()); err == nil {
		t.Fatal("RecentPlays() error = nil, want API error")
	}
}

func TestRecentPlaysRequiresKey(t *testing.T) {
	client := NewListeningClient(&config.Config{ListeningAPIURL: "http://127.0.0.1:0/"}, zerolog.Nop())
	if _, err := client.RecentPlays(context.Background(), "armyfan", time.Now()); err == nil {
		t.Fatal("RecentPlays() error = nil, want missing key error")
	}
}
