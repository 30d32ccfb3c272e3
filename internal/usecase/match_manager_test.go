package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-program/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-program/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	errRedisDown = errors.New("redis down")

	playerX = entity.Identity{1}
	playerO = entity.Identity{2}
)

// mockMatchRepo runs transitions against the match returned by the Update
// expectation, the way the redis repository does against its stored record.
type mockMatchRepo struct {
	mock.Mock
}

func (that *mockMatchRepo) Create(ctx context.Context, id string, match *entity.Match) error {
	args := that.Called(ctx, id, match)
	return args.Error(0)
}

func (that *mockMatchRepo) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	args := that.Called(ctx, id)
	match, _ := args.Get(0).(*entity.Match)
	return match, args.Error(1)
}

func (that *mockMatchRepo) Update(ctx context.Context, id string, fn func(match *entity.Match) error) (*entity.Match, error) {
	args := that.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	match := *args.Get(0).(*entity.Match)
	if err := fn(&match); err != nil {
		return nil, err
	}

	return &match, nil
}

func newManager(t *testing.T) (*MatchManager, *mockMatchRepo) {
	t.Helper()

	repo := &mockMatchRepo{}
	t.Cleanup(func() { repo.AssertExpectations(t) })

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewMatchManager(logger, repo, time.Minute), repo
}

func startedMatch(t *testing.T) *entity.Match {
	t.Helper()

	match := entity.NewMatch(playerX)
	require.NoError(t, match.Join(playerO, 1))

	return &match
}

func TestMatchManager_CreateMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a new waiting match under a fresh id", func(t *testing.T) {
		// Given: a repository that accepts the new match
		manager, repo := newManager(t)
		repo.On("Create", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*entity.Match")).
			Return(nil).
			Once()

		// When: player X creates a match
		matchID, match, err := manager.CreateMatch(ctx, playerX)

		// Then: the match waits for an opponent
		require.NoError(t, err)
		assert.Len(t, matchID, 36)
		assert.Equal(t, entity.NewMatch(playerX), *match)
	})

	t.Run("Returns storage errors", func(t *testing.T) {
		manager, repo := newManager(t)
		repo.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(errRedisDown).
			Once()

		matchID, match, err := manager.CreateMatch(ctx, playerX)

		require.ErrorIs(t, err, errRedisDown)
		assert.Empty(t, matchID)
		assert.Nil(t, match)
	})
}

func TestMatchManager_GetMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the stored match", func(t *testing.T) {
		manager, repo := newManager(t)
		stored := startedMatch(t)
		repo.On("GetByID", mock.Anything, "m1").Return(stored, nil).Once()

		match, err := manager.GetMatch(ctx, "m1")

		require.NoError(t, err)
		assert.Equal(t, stored, match)
	})

	t.Run("Returns ErrMatchNotFound", func(t *testing.T) {
		manager, repo := newManager(t)
		repo.On("GetByID", mock.Anything, "m1").Return(nil, apperror.ErrMatchNotFound).Once()

		_, err := manager.GetMatch(ctx, "m1")

		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})
}

func TestMatchManager_JoinMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Joins a waiting match", func(t *testing.T) {
		// Given: a stored waiting match
		manager, repo := newManager(t)
		waiting := entity.NewMatch(playerX)
		repo.On("Update", mock.Anything, "m1").Return(&waiting, nil).Once()

		// When: player O joins
		match, err := manager.JoinMatch(ctx, "m1", playerO, 1)

		// Then: X is to move
		require.NoError(t, err)
		assert.Equal(t, entity.XTurn, match.Phase)
		assert.Equal(t, playerO, match.PlayerO)
	})

	t.Run("Surfaces ErrGameInProgress", func(t *testing.T) {
		manager, repo := newManager(t)
		repo.On("Update", mock.Anything, "m1").Return(startedMatch(t), nil).Once()

		match, err := manager.JoinMatch(ctx, "m1", playerO, 2)

		require.ErrorIs(t, err, apperror.ErrGameInProgress)
		assert.Nil(t, match)
	})
}

func TestMatchManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies a valid move", func(t *testing.T) {
		manager, repo := newManager(t)
		repo.On("Update", mock.Anything, "m1").Return(startedMatch(t), nil).Once()

		match, err := manager.MakeMove(ctx, "m1", playerX, 1, 1)

		require.NoError(t, err)
		assert.Equal(t, entity.OTurn, match.Phase)
		assert.Equal(t, entity.MarkX, match.Board[4])
	})

	t.Run("Reports the winning move", func(t *testing.T) {
		// Given: X holds two cells of the top row
		manager, repo := newManager(t)
		stored := startedMatch(t)
		require.NoError(t, stored.Move(playerX, 0, 0))
		require.NoError(t, stored.Move(playerO, 0, 1))
		require.NoError(t, stored.Move(playerX, 1, 0))
		require.NoError(t, stored.Move(playerO, 1, 1))
		repo.On("Update", mock.Anything, "m1").Return(stored, nil).Once()

		// When: X completes the row
		match, err := manager.MakeMove(ctx, "m1", playerX, 2, 0)

		// Then: X has won
		require.NoError(t, err)
		assert.Equal(t, entity.XWon, match.Phase)
	})

	t.Run("Surfaces ErrPlayerNotFound", func(t *testing.T) {
		manager, repo := newManager(t)
		repo.On("Update", mock.Anything, "m1").Return(startedMatch(t), nil).Once()

		_, err := manager.MakeMove(ctx, "m1", playerO, 0, 0)

		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
	})

	t.Run("Surfaces concurrent update failures", func(t *testing.T) {
		manager, repo := newManager(t)
		repo.On("Update", mock.Anything, "m1").Return(nil, apperror.ErrConcurrentUpdate).Once()

		_, err := manager.MakeMove(ctx, "m1", playerX, 0, 0)

		require.ErrorIs(t, err, apperror.ErrConcurrentUpdate)
	})
}

func TestMatchManager_KeepAlive(t *testing.T) {
	ctx := context.Background()

	t.Run("Refreshes the caller's timestamp", func(t *testing.T) {
		manager, repo := newManager(t)
		repo.On("Update", mock.Anything, "m1").Return(startedMatch(t), nil).Once()

		match, err := manager.KeepAlive(ctx, "m1", playerX, 50)

		require.NoError(t, err)
		assert.Equal(t, [2]uint64{50, 1}, match.LastActive)
	})

	t.Run("Surfaces ErrInvalidTimestamp", func(t *testing.T) {
		manager, repo := newManager(t)
		repo.On("Update", mock.Anything, "m1").Return(startedMatch(t), nil).Once()

		_, err := manager.KeepAlive(ctx, "m1", playerO, 1)

		require.ErrorIs(t, err, apperror.ErrInvalidTimestamp)
	})
}

func TestIsAbandoned(t *testing.T) {
	now := time.Unix(1_000, 0)

	t.Run("Player to move went quiet", func(t *testing.T) {
		// Given: X is to move and last proved liveness at 100
		match := startedMatch(t)
		match.LastActive[entity.SideX] = 100

		// Then: X is abandoned after a 60s window but not after a 900s one
		assert.True(t, IsAbandoned(match, now, time.Minute))
		assert.False(t, IsAbandoned(match, now, 900*time.Second))
	})

	t.Run("Only the player to move counts", func(t *testing.T) {
		// Given: O is to move and fresh, X is stale
		match := startedMatch(t)
		require.NoError(t, match.Move(playerX, 0, 0))
		match.LastActive = [2]uint64{0, 990}

		assert.False(t, IsAbandoned(match, now, time.Minute))
	})

	t.Run("Waiting and finished matches are never abandoned", func(t *testing.T) {
		waiting := entity.NewMatch(playerX)
		finished := startedMatch(t)
		finished.Phase = entity.Draw

		assert.False(t, IsAbandoned(&waiting, now, time.Second))
		assert.False(t, IsAbandoned(finished, now, time.Second))
	})

	t.Run("Timestamps ahead of the clock are not abandoned", func(t *testing.T) {
		// Given: X proved liveness with a timestamp near the top of the range
		match := startedMatch(t)
		match.LastActive[entity.SideX] = math.MaxUint64 - 10

		// Then: no deadline wraps around
		assert.False(t, IsAbandoned(match, now, time.Minute))
		assert.False(t, IsAbandoned(match, now, time.Duration(math.MaxInt64)))
	})

	t.Run("Non-positive windows and pre-epoch clocks disable the check", func(t *testing.T) {
		match := startedMatch(t)
		match.LastActive[entity.SideX] = 100

		assert.False(t, IsAbandoned(match, now, 0))
		assert.False(t, IsAbandoned(match, now, -time.Minute))
		assert.False(t, IsAbandoned(match, time.Unix(-5_000, 0), time.Minute))
	})

	t.Run("Huge windows never expire", func(t *testing.T) {
		match := startedMatch(t)

		assert.False(t, IsAbandoned(match, now, time.Duration(math.MaxInt64)))
	})
}

func TestMatchManager_Abandoned(t *testing.T) {
	// Given: a manager with a one minute window and a fixed clock
	manager, _ := newManager(t)
	manager.clock = func() time.Time { return time.Unix(1_000, 0) }

	match := startedMatch(t)

	// When: X last proved liveness 900 seconds ago
	match.LastActive[entity.SideX] = 100

	// Then: the match is abandoned
	assert.True(t, manager.Abandoned(match))

	// When: X proves liveness again
	require.NoError(t, match.KeepAlive(playerX, 990))

	// Then: it no longer is
	assert.False(t, manager.Abandoned(match))
}
