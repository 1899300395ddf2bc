package tmdb

import (
	"strconv"
	"strings"

	"github.com/iliyamo/movie-grid/internal/model"
)

const (
	maxSearchResults = 8
	minPopularity    = 6.0
	minReleaseYear   = 1990
)

// filterResults keeps well-known post-1990 titles, capped for a dropdown.
// Titles without a parseable release year are dropped.
func filterResults(in []Movie) []model.SearchResult {
	out := make([]model.SearchResult, 0, maxSearchResults)
	for _, m := range in {
		if len(out) == maxSearchResults {
			break
		}
		if m.Popularity <= minPopularity {
			continue
		}
		year, ok := releaseYear(m.ReleaseDate)
		if !ok || year <= minReleaseYear {
			continue
		}
		y := strconv.Itoa(year)
		r := model.SearchResult{
			TMDBID:     m.ID,
			Title:      m.Title,
			Year:       &y,
			Popularity: m.Popularity,
			VoteCount:  m.VoteCount,
		}
		if m.PosterPath != nil {
			r.PosterPath = *m.PosterPath
		}
		out = append(out, r)
	}
	return out
}

func releaseYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, false
	}
	return y, true
}
