package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-grid/internal/model"
)

// MovieSearcher finds candidate titles for the typeahead.
type MovieSearcher interface {
	SearchMovies(ctx context.Context, query string) ([]model.SearchResult, error)
}

// SearchHandler proxies title search.
type SearchHandler struct {
	Movies MovieSearcher
	Log    logrus.FieldLogger
}

func NewSearchHandler(m MovieSearcher, log logrus.FieldLogger) *SearchHandler {
	return &SearchHandler{Movies: m, Log: log}
}

// Search handles GET /v1/movies/search?q=.
func (h *SearchHandler) Search(c echo.Context) error {
	results, err := h.Movies.SearchMovies(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		h.Log.WithError(err).Warn("movie search failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "TMDB request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}
