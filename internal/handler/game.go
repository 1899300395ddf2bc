package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-grid/internal/game"
	"github.com/iliyamo/movie-grid/internal/middleware"
	"github.com/iliyamo/movie-grid/internal/model"
)

// GameHandler serves the daily grid.
type GameHandler struct {
	Game *game.Service
	Log  logrus.FieldLogger
}

func NewGameHandler(svc *game.Service, log logrus.FieldLogger) *GameHandler {
	return &GameHandler{Game: svc, Log: log}
}

// Today returns the puzzle, the caller's play (created on first visit),
// its guesses and the rendered board.
func (h *GameHandler) Today(c echo.Context) error {
	today, err := h.Game.Today(c.Request().Context(), middleware.PlayerID(c))
	if err != nil {
		status, msg := errorStatus(err)
		if status >= 500 {
			h.Log.WithError(err).Error("load today failed")
		}
		return c.JSON(status, echo.Map{"error": msg})
	}
	if today.Guesses == nil {
		today.Guesses = []model.Guess{}
	}
	return c.JSON(http.StatusOK, today)
}

type guessReq struct {
	PlayID     uint64 `json:"play_id"`
	CellKey    string `json:"cell_key"`
	MovieID    int64  `json:"movie_id"`
	ActorID    int64  `json:"actor_id"`
	PosterPath string `json:"poster_path"`
}

// SubmitGuess records a guess for one cell.  Failures are reported as
// {ok:false, error, retryable} so the client can decide whether to offer
// a retry.
func (h *GameHandler) SubmitGuess(c echo.Context) error {
	var req guessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid body", "retryable": false})
	}
	res, err := h.Game.Submit(c.Request().Context(), middleware.PlayerID(c), game.SubmitGuessRequest{
		PlayID:     req.PlayID,
		CellKey:    req.CellKey,
		MovieID:    req.MovieID,
		ActorID:    req.ActorID,
		PosterPath: req.PosterPath,
	})
	if err != nil {
		status, msg := errorStatus(err)
		return c.JSON(status, echo.Map{"ok": false, "error": msg, "retryable": game.Retryable(err)})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ok":             true,
		"correct":        res.Correct,
		"points_awarded": res.PointsAwarded,
		"play":           res.Play,
		"guess":          res.Guess,
	})
}
