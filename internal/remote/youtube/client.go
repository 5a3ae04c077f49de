// Package youtube implements remote.Source against the YouTube Data API v3.
// Listing endpoints are paginated 50 at a time and walked to exhaustion, so a
// single Items call may block for a while on large playlists.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"shadowlist/internal/config"
	"shadowlist/internal/remote"
)

const scopeYouTube = "https://www.googleapis.com/auth/youtube"

// Client talks to the YouTube Data API v3.
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
	logger   *slog.Logger
}

var _ remote.Source = (*Client)(nil)

// New builds a Client from configuration. A static bearer token takes
// precedence; otherwise the token file is loaded and refreshed through the
// standard OAuth flow when it carries client credentials.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient, err := newHTTPClient(ctx, &cfg.YouTube)
	if err != nil {
		return nil, err
	}
	httpClient.Timeout = 60 * time.Second

	return &Client{
		baseURL:  cfg.YouTube.BaseURL,
		pageSize: cfg.YouTube.PageSize,
		http:     httpClient,
		logger:   logger,
	}, nil
}

func newHTTPClient(ctx context.Context, cfg *config.YouTube) (*http.Client, error) {
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		return oauth2.NewClient(ctx, src), nil
	}

	data, err := os.ReadFile(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	// The authorized-user format written by Google's OAuth tooling.
	var stored struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
		RefreshToken string `json:"refresh_token"`
		AccessToken  string `json:"token"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", cfg.TokenPath, err)
	}

	token := &oauth2.Token{AccessToken: stored.AccessToken, RefreshToken: stored.RefreshToken}
	if stored.ClientID == "" || stored.RefreshToken == "" {
		if stored.AccessToken == "" {
			return nil, fmt.Errorf("token file %s holds neither a refreshable token nor an access token", cfg.TokenPath)
		}
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)), nil
	}

	conf := &oauth2.Config{
		ClientID:     stored.ClientID,
		ClientSecret: stored.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{scopeYouTube},
	}
	// Force a refresh on first use; the stored access token is usually stale.
	token.Expiry = time.Now().Add(-time.Minute)
	return conf.Client(ctx, token), nil
}

type playlistResource struct {
	ID      string `json:"id"`
	Snippet struct {
		PublishedAt  time.Time                   `json:"publishedAt"`
		ChannelID    string                      `json:"channelId"`
		ChannelTitle string                      `json:"channelTitle"`
		Title        string                      `json:"title"`
		Description  string                      `json:"description"`
		Thumbnails   map[string]remote.Thumbnail `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		ItemCount int `json:"itemCount"`
	} `json:"contentDetails"`
}

type playlistItemResource struct {
	ID      string `json:"id"`
	Snippet struct {
		Title      string `json:"title"`
		Position   int    `json:"position"`
		PlaylistID string `json:"playlistId"`
		ResourceID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"resourceId"`
		// Absent for private and region-restricted videos.
		VideoOwnerChannelTitle *string `json:"videoOwnerChannelTitle"`
	} `json:"snippet"`
}

type listResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// MyPlaylists lists the authenticated user's playlists, metadata only.
func (c *Client) MyPlaylists(ctx context.Context) ([]*remote.Playlist, error) {
	params := url.Values{
		"part":       {"snippet,contentDetails"},
		"mine":       {"true"},
		"maxResults": {strconv.Itoa(c.pageSize)},
	}

	var playlists []*remote.Playlist
	for pageToken := ""; ; {
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var page listResponse[playlistResource]
		if err := c.get(ctx, "playlists", params, &page); err != nil {
			return nil, err
		}
		for _, res := range page.Items {
			playlists = append(playlists, toPlaylist(res))
		}
		c.logger.Debug("fetched playlist page", slog.Int("total", len(playlists)))
		if page.NextPageToken == "" {
			return playlists, nil
		}
		pageToken = page.NextPageToken
	}
}

// Playlist resolves one playlist by id.
func (c *Client) Playlist(ctx context.Context, id string) (*remote.Playlist, error) {
	params := url.Values{
		"part": {"snippet,contentDetails"},
		"id":   {id},
	}
	var page listResponse[playlistResource]
	if err := c.get(ctx, "playlists", params, &page); err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, id)
	}
	return toPlaylist(page.Items[0]), nil
}

// Items returns the full ordered item list for a playlist, walking every
// page.
func (c *Client) Items(ctx context.Context, playlistID string) ([]*remote.Item, error) {
	params := url.Values{
		"part":       {"id,snippet"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(c.pageSize)},
	}

	c.logger.Info("fetching playlist items", slog.String("playlist", playlistID))
	var items []*remote.Item
	for pageToken := ""; ; {
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var page listResponse[playlistItemResource]
		if err := c.get(ctx, "playlistItems", params, &page); err != nil {
			return nil, err
		}
		for _, res := range page.Items {
			if res.Snippet.PlaylistID != playlistID {
				c.logger.Warn("item belongs to another playlist",
					slog.String("item", res.ID),
					slog.String("playlist", res.Snippet.PlaylistID))
			}
			items = append(items, &remote.Item{
				ID:         res.ID,
				PlaylistID: playlistID,
				Title:      res.Snippet.Title,
				Channel:    res.Snippet.VideoOwnerChannelTitle,
				VideoID:    res.Snippet.ResourceID.VideoID,
				Position:   res.Snippet.Position,
			})
		}
		c.logger.Debug("fetched item page",
			slog.String("playlist", playlistID),
			slog.Int("total", len(items)))
		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

// SetPosition moves one item to a new zero-based position.
func (c *Client) SetPosition(ctx context.Context, item *remote.Item, position int) error {
	body := map[string]any{
		"id": item.ID,
		"snippet": map[string]any{
			"playlistId": item.PlaylistID,
			"position":   position,
			"resourceId": map[string]any{
				"kind":    "youtube#video",
				"videoId": item.VideoID,
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode position update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/playlistItems?part=snippet", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build position update: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &remote.RequestError{Op: "update position", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &remote.RequestError{
			Op:         "update position",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", readErrorBody(resp.Body)),
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, resource string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, resource, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", resource, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &remote.RequestError{Op: "list " + resource, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return remote.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &remote.RequestError{
			Op:         "list " + resource,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", readErrorBody(resp.Body)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &remote.RequestError{Op: "decode " + resource, Err: err}
	}
	return nil
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 2048))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	return string(data)
}

func toPlaylist(res playlistResource) *remote.Playlist {
	return &remote.Playlist{
		ID:           res.ID,
		Title:        res.Snippet.Title,
		Description:  res.Snippet.Description,
		ChannelID:    res.Snippet.ChannelID,
		ChannelTitle: res.Snippet.ChannelTitle,
		PublishedAt:  res.Snippet.PublishedAt,
		ItemCount:    res.ContentDetails.ItemCount,
		Thumbnails:   res.Snippet.Thumbnails,
	}
}
