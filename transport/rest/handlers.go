package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-program/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-program/internal/entity"
)

const maxBodySize = 4 << 10

var errBadRequest = errors.New("bad request")

type uMatch interface {
	CreateMatch(ctx context.Context, initiator entity.Identity) (string, *entity.Match, error)
	GetMatch(ctx context.Context, matchID string) (*entity.Match, error)
	JoinMatch(ctx context.Context, matchID string, joiner entity.Identity, timestamp uint64) (*entity.Match, error)
	MakeMove(ctx context.Context, matchID string, mover entity.Identity, col, row int) (*entity.Match, error)
	KeepAlive(ctx context.Context, matchID string, player entity.Identity, timestamp uint64) (*entity.Match, error)
	Abandoned(match *entity.Match) bool
}

type Handlers struct {
	logger *slog.Logger
	uMatch uMatch

	verifySignatures bool
}

func NewHandlers(logger *slog.Logger, uMatch uMatch, verifySignatures bool) *Handlers {
	return &Handlers{
		logger:           logger.With("component", "rest"),
		uMatch:           uMatch,
		verifySignatures: verifySignatures,
	}
}

func (that *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write ping response", "error", err)
	}
}

func (that *Handlers) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req playerRequest

	player, err := that.decodeSigned(r, &req, func() string { return req.Player })
	if err != nil {
		that.writeError(w, "CreateMatch", err)
		return
	}

	matchID, match, err := that.uMatch.CreateMatch(r.Context(), player)
	if err != nil {
		that.writeError(w, "CreateMatch", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, newMatchView(matchID, match))
}

func (that *Handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")

	match, err := that.uMatch.GetMatch(r.Context(), matchID)
	if err != nil {
		that.writeError(w, "GetMatch", err)
		return
	}

	view := newMatchView(matchID, match)
	view.Abandoned = that.uMatch.Abandoned(match)

	that.writeJSON(w, http.StatusOK, view)
}

func (that *Handlers) JoinMatch(w http.ResponseWriter, r *http.Request) {
	var req timestampRequest

	player, err := that.decodeSigned(r, &req, func() string { return req.Player })
	if err != nil {
		that.writeError(w, "JoinMatch", err)
		return
	}

	matchID := r.PathValue("id")

	match, err := that.uMatch.JoinMatch(r.Context(), matchID, player, req.Timestamp)
	if err != nil {
		that.writeError(w, "JoinMatch", err)
		return
	}

	that.writeJSON(w, http.StatusOK, newMatchView(matchID, match))
}

func (that *Handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest

	player, err := that.decodeSigned(r, &req, func() string { return req.Player })
	if err != nil {
		that.writeError(w, "MakeMove", err)
		return
	}

	matchID := r.PathValue("id")

	match, err := that.uMatch.MakeMove(r.Context(), matchID, player, req.Col, req.Row)
	if err != nil {
		that.writeError(w, "MakeMove", err)
		return
	}

	that.writeJSON(w, http.StatusOK, newMatchView(matchID, match))
}

func (that *Handlers) KeepAlive(w http.ResponseWriter, r *http.Request) {
	var req timestampRequest

	player, err := that.decodeSigned(r, &req, func() string { return req.Player })
	if err != nil {
		that.writeError(w, "KeepAlive", err)
		return
	}

	matchID := r.PathValue("id")

	match, err := that.uMatch.KeepAlive(r.Context(), matchID, player, req.Timestamp)
	if err != nil {
		that.writeError(w, "KeepAlive", err)
		return
	}

	that.writeJSON(w, http.StatusOK, newMatchView(matchID, match))
}

// decodeSigned reads the body into req, parses the acting player from it and
// authenticates the body against that player's key.
func (that *Handlers) decodeSigned(r *http.Request, req any, player func() string) (entity.Identity, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	if err = json.Unmarshal(body, req); err != nil {
		return entity.Identity{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	identity, err := entity.ParseIdentity(player())
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	if that.verifySignatures {
		if err = verifySignature(r, identity, body); err != nil {
			return entity.Identity{}, err
		}
	}

	return identity, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrPlayerNotFound):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrGameInProgress),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrInvalidTimestamp),
		errors.Is(err, apperror.ErrMatchAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrConcurrentUpdate):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (that *Handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
	} else {
		that.logger.Debug("request rejected", "method", method, "status", status, "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
