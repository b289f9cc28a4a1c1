package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	errs "goban/internal/errors"
)

const transcriptKeyPrefix = "transcript:"

// TranscriptStorage caches the transcript of every live session in redis so
// that a session can be reloaded after the renderer reconnects.
type TranscriptStorage struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewTranscriptStorage(client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *TranscriptStorage {
	return &TranscriptStorage{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}

func (t *TranscriptStorage) SaveTranscript(ctx context.Context, sessionID string, text string) error {
	if err := t.client.Set(ctx, transcriptKey(sessionID), text, t.ttl).Err(); err != nil {
		return fmt.Errorf("save transcript %s: %w", sessionID, err)
	}
	t.log.Debugw("transcript cached", "session", sessionID, "bytes", len(text))
	return nil
}

func (t *TranscriptStorage) LoadTranscript(ctx context.Context, sessionID string) (string, error) {
	text, err := t.client.Get(ctx, transcriptKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errs.ErrTranscriptNotFound
		}
		return "", fmt.Errorf("load transcript %s: %w", sessionID, err)
	}
	return text, nil
}

func (t *TranscriptStorage) DeleteTranscript(ctx context.Context, sessionID string) error {
	return t.client.Del(ctx, transcriptKey(sessionID)).Err()
}
