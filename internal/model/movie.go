package model

// SearchResult is one typeahead candidate returned to the client.
type SearchResult struct {
	TMDBID     int64   `json:"tmdbId"`
	Title      string  `json:"title"`
	Year       *string `json:"year"`
	Popularity float64 `json:"popularity"`
	PosterPath string  `json:"posterPath"`
	VoteCount  int     `json:"voteCount"`
}
