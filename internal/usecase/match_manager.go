package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-program/internal/entity"
)

type matchRepo interface {
	Create(ctx context.Context, id string, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	Update(ctx context.Context, id string, fn func(match *entity.Match) error) (*entity.Match, error)
}

// MatchManager maps requests onto match transitions and persists the result.
// Identities it receives are expected to be authenticated already.
type MatchManager struct {
	logger    *slog.Logger
	matchRepo matchRepo

	abandonWindow time.Duration
	clock         func() time.Time
}

func NewMatchManager(logger *slog.Logger, matchRepo matchRepo, abandonWindow time.Duration) *MatchManager {
	return &MatchManager{
		logger:        logger.With("component", "match_manager"),
		matchRepo:     matchRepo,
		abandonWindow: abandonWindow,
		clock:         time.Now,
	}
}

func (that *MatchManager) CreateMatch(ctx context.Context, initiator entity.Identity) (string, *entity.Match, error) {
	log := that.logger.With("method", "CreateMatch")

	matchID := uuid.NewString()
	match := entity.NewMatch(initiator)

	if err := that.matchRepo.Create(ctx, matchID, &match); err != nil {
		return "", nil, fmt.Errorf("failed to create match: %w", err)
	}

	log.Info("match created", "matchID", matchID, "playerX", initiator.String())

	return matchID, &match, nil
}

func (that *MatchManager) GetMatch(ctx context.Context, matchID string) (*entity.Match, error) {
	match, err := that.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

func (that *MatchManager) JoinMatch(ctx context.Context, matchID string, joiner entity.Identity, timestamp uint64) (*entity.Match, error) {
	return that.apply(ctx, "JoinMatch", "join match", matchID, func(match *entity.Match) error {
		return match.Join(joiner, timestamp)
	})
}

func (that *MatchManager) MakeMove(ctx context.Context, matchID string, mover entity.Identity, col, row int) (*entity.Match, error) {
	return that.apply(ctx, "MakeMove", "make move", matchID, func(match *entity.Match) error {
		return match.Move(mover, col, row)
	})
}

func (that *MatchManager) KeepAlive(ctx context.Context, matchID string, player entity.Identity, timestamp uint64) (*entity.Match, error) {
	return that.apply(ctx, "KeepAlive", "keep alive", matchID, func(match *entity.Match) error {
		return match.KeepAlive(player, timestamp)
	})
}

func (that *MatchManager) apply(ctx context.Context, method, action, matchID string, transition func(match *entity.Match) error) (*entity.Match, error) {
	log := that.logger.With("method", method, "matchID", matchID)

	match, err := that.matchRepo.Update(ctx, matchID, transition)
	if err != nil {
		log.Warn("transition rejected", "error", err)
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}

	log.Info("transition applied", "phase", match.Phase.String())

	if match.Phase.IsTerminal() {
		log.Info("match finished", "phase", match.Phase.String())
	}

	return match, nil
}

// Abandoned reports whether match is abandoned at the current time under the
// configured window.
func (that *MatchManager) Abandoned(match *entity.Match) bool {
	return IsAbandoned(match, that.clock(), that.abandonWindow)
}

// IsAbandoned reports whether the player to move has not proven liveness
// within window of now. Timestamps are in unix seconds. Waiting and finished
// matches are never abandoned, and a non-positive window disables the check.
func IsAbandoned(match *entity.Match, now time.Time, window time.Duration) bool {
	if window <= 0 {
		return false
	}

	var side entity.Side

	switch match.Phase {
	case entity.XTurn:
		side = entity.SideX
	case entity.OTurn:
		side = entity.SideO
	default:
		return false
	}

	nowUnix := now.Unix()
	if nowUnix < 0 {
		return false
	}

	last := match.LastActive[side]
	if uint64(nowUnix) <= last {
		return false
	}

	return uint64(nowUnix)-last > uint64(window/time.Second)
}
