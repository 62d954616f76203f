package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"progression-engine/internal/config"
	"progression-engine/internal/constants"
	"progression-engine/internal/domain"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// ListeningClient reads scrobbles from a Last.fm-compatible
// user.getrecenttracks endpoint.
type ListeningClient struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewListeningClient(cfg *config.Config, logger zerolog.Logger) *ListeningClient {
	return &ListeningClient{
		baseURL: cfg.ListeningAPIURL,
		apiKey:  cfg.ListeningAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// RecentPlays returns the user's completed plays since the given time,
// following pagination up to constants.ListeningMaxPages pages.
func (c *ListeningClient) RecentPlays(ctx context.Context, username string, since time.Time) ([]domain.Play, error) {
	if c.apiKey == "" {
		return nil, errors.New("listening api key is not configured")
	}

	var plays []domain.Play
	for page := 1; page <= constants.ListeningMaxPages; page++ {
		resp, err := doRequest[RecentTracksResponse](ctx, c, c.recentTracksURL(username, since, page))
		if err != nil {
			c.logger.Warn().Err(err).Str("username", username).Int("page", page).Msg("failed to fetch recent tracks")
			return nil, err
		}
		if resp.Error != 0 {
			return nil, fmt.Errorf("listening API error %d: %s", resp.Error, resp.Message)
		}

		tracks, err := resp.RecentTracks.tracks()
		if err != nil {
			return nil, fmt.Errorf("failed to decode recent tracks: %w", err)
		}
		for _, t := range tracks {
			if t.Attr.NowPlaying == "true" {
				continue
			}
			uts, err := strconv.ParseInt(t.Date.UTS, 10, 64)
			if err != nil {
				continue
			}
			plays = append(plays, domain.Play{
				TrackName:  t.Name,
				ArtistName: t.Artist.Text,
				AlbumName:  t.Album.Text,
				PlayedAt:   time.Unix(uts, 0).UTC(),
			})
		}

		totalPages, _ := strconv.Atoi(resp.RecentTracks.Attr.TotalPages)
		if page >= totalPages {
			break
		}
	}

	c.logger.Debug().Str("username", username).Time("since", since).Int("plays", len(plays)).Msg("fetched recent plays")
	return plays, nil
}

func (c *ListeningClient) recentTracksURL(username string, since time.Time, page int) string {
	q := url.Values{}
	q.Set("method", "user.getrecenttracks")
	q.Set("user", username)
	q.Set("from", strconv.FormatInt(since.Unix(), 10))
	q.Set("limit", strconv.Itoa(constants.ListeningPageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	return c.baseURL + "?" + q.Encode()
}

func doRequest[T any](ctx context.Context, client *ListeningClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, fmt.Errorf("%w: %v", domain.ErrExternalProviderTimeout, err)
		}
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type RecentTracksResponse struct {
	RecentTracks RecentTracks `json:"recenttracks"`
	Error        int          `json:"error"`
	Message      string       `json:"message"`
}

type RecentTracks struct {
	// Track is an array, or a single object when the page holds one play.
	Track json.RawMessage `json:"track"`
	Attr  struct {
		Page       string `json:"page"`
		PerPage    string `json:"perPage"`
		TotalPages string `json:"totalPages"`
		Total      string `json:"total"`
	} `json:"@attr"`
}

func (r RecentTracks) tracks() ([]RecentTrack, error) {
	raw := bytes.TrimSpace(r.Track)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '{' {
		var one RecentTrack
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		return []RecentTrack{one}, nil
	}
	var many []RecentTrack
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, err
	}
	return many, nil
}

type RecentTrack struct {
	Name   string   `json:"name"`
	Artist TextNode `json:"artist"`
	Album  TextNode `json:"album"`
	Date   struct {
		UTS string `json:"uts"`
	} `json:"date"`
	Attr struct {
		NowPlaying string `json:"nowplaying"`
	} `json:"@attr"`
}

type TextNode struct {
	Text string `json:"#text"`
}
