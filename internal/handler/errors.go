package handler

import (
	"errors"
	"net/http"

	"github.com/iliyamo/movie-grid/internal/game"
)

// errorStatus maps a core error to its HTTP status and user-facing message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound, "no puzzle published for today"
	case errors.Is(err, game.ErrUnauthorized):
		return http.StatusForbidden, "this play belongs to another player"
	case errors.Is(err, game.ErrBudgetExhausted):
		return http.StatusConflict, "no guesses remaining"
	case errors.Is(err, game.ErrCellAlreadyAnswered):
		return http.StatusConflict, "cell already answered"
	case errors.Is(err, game.ErrInvalidSelection):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, game.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "could not verify the answer, please retry"
	case errors.Is(err, game.ErrConflict), errors.Is(err, game.ErrDuplicateSession):
		return http.StatusConflict, "conflicting update, please retry"
	}
	return http.StatusInternalServerError, "something went wrong, please retry"
}
