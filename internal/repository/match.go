package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-program/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-program/internal/entity"
)

// maxUpdateAttempts bounds the optimistic retries of Update.
const maxUpdateAttempts = 5

type MatchRepository interface {
	Create(ctx context.Context, id string, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	Update(ctx context.Context, id string, fn func(match *entity.Match) error) (*entity.Match, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbMatch struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchRepository stores matches as fixed-size binary records. A zero ttl
// keeps records forever.
func NewMatchRepository(client *redis.Client, ttl time.Duration) MatchRepository {
	return &dbMatch{
		client: client,
		ttl:    ttl,
	}
}

func matchKey(id string) string {
	return "match:" + id
}

func (that *dbMatch) Create(ctx context.Context, id string, match *entity.Match) error {
	record, err := match.MarshalBinary()
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	created, err := that.client.SetNX(ctx, matchKey(id), record, that.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: %s", apperror.ErrMatchAlreadyExists, id)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	return getMatch(ctx, that.client, matchKey(id))
}

// Update applies fn to the stored match under WATCH. The record is written
// back only if fn succeeds and nobody else wrote the key in between;
// conflicting writers are retried.
func (that *dbMatch) Update(ctx context.Context, id string, fn func(match *entity.Match) error) (*entity.Match, error) {
	key := matchKey(id)

	var updated *entity.Match

	txf := func(tx *redis.Tx) error {
		match, err := getMatch(ctx, tx, key)
		if err != nil {
			return err
		}

		if err = fn(match); err != nil {
			return err
		}

		record, err := match.MarshalBinary()
		if err != nil {
			return fmt.Errorf("could not marshal match: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, record, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err != nil {
			return err
		}

		updated = match

		return nil
	}

	for range maxUpdateAttempts {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: %s", apperror.ErrConcurrentUpdate, id)
}

func (that *dbMatch) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, matchKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete match by ID: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrMatchNotFound
	}

	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getMatch(ctx context.Context, client getter, key string) (*entity.Match, error) {
	response, err := client.Get(ctx, key).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	var match entity.Match
	if err = match.UnmarshalBinary(response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match %s: %w", key, err)
	}

	return &match, nil
}
