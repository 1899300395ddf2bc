// Package tmdb talks to The Movie Database API: cast lookups back the
// correctness oracle and title search backs the typeahead.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public TMDB API host.
const DefaultBaseURL = "https://api.themoviedb.org"

// ErrNoAPIKey is returned when the client is used without credentials.
var ErrNoAPIKey = errors.New("tmdb: missing api key")

// StatusError is a non-2xx reply from TMDB.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: %s returned status %d", e.Path, e.Code)
}

// Client is a thin HTTP client for the two endpoints the game needs.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a client.  An empty baseURL selects DefaultBaseURL; a
// zero timeout selects 5s.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type castMember struct {
	ID int64 `json:"id"`
}

type creditsResponse struct {
	Cast []castMember `json:"cast"`
}

// Credits returns the person ids in the movie's cast.
func (c *Client) Credits(ctx context.Context, movieID int64) ([]int64, error) {
	var body creditsResponse
	path := "/3/movie/" + strconv.FormatInt(movieID, 10) + "/credits"
	if err := c.get(ctx, path, nil, &body); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(body.Cast))
	for _, m := range body.Cast {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Movie is a search hit as TMDB returns it.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	PosterPath  *string `json:"poster_path"`
	VoteCount   int     `json:"vote_count"`
}

type searchResponse struct {
	Results []Movie `json:"results"`
}

// SearchMovies returns the first page of title matches, adult titles
// excluded.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Movie, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", "en-US")
	params.Set("page", "1")

	var body searchResponse
	if err := c.get(ctx, "/3/search/movie", params, &body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Path: path, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: decode %s: %w", path, err)
	}
	return nil
}
