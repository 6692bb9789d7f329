package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"courtstats/internal/logging"
)

const (
	defaultFinalizeQueueKey = "finalize_games"
	retrySuffix             = ":retry"
	dlqSuffix               = ":dlq"
	retryCounterSuffix      = ":retry-count:"
	maxRetryAttempts        = 3
	brPopBlock              = 5 * time.Second
)

// RedisQueue implements queue operations using Redis lists. Failed jobs move
// to a retry list and, after maxRetryAttempts, to a dead-letter list; a
// finalization that keeps failing never blocks the game-status transition
// that enqueued it.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a Redis-backed queue helper.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, key: defaultFinalizeQueueKey}
}

// Consume uses BRPOP to deliver jobs to the handler until the context is
// canceled. Retried jobs take priority over fresh ones.
func (q *RedisQueue) Consume(ctx context.Context, queueName string, handler func([]byte) error) error {
	logger := logging.Logger()
	if queueName == "" {
		queueName = q.key
	}
	retryKey := queueName + retrySuffix
	dlqKey := queueName + dlqSuffix

	for {
		if ctx.Err() != nil {
			logger.Warnf("redis consumer exiting: %v", ctx.Err())
			return ctx.Err()
		}

		payload, ok := q.pop(ctx, queueName, retryKey)
		if !ok {
			continue
		}
		if err := handler(payload); err != nil {
			logger.Warnf("handler error, scheduling retry: %v", err)
			if err := q.handleRetry(ctx, queueName, retryKey, dlqKey, payload); err != nil {
				logger.Errorf("retry handling failed: %v", err)
			}
			continue
		}
		_ = q.clearRetryCounter(ctx, queueName, payload)
	}
}

// ConsumeConcurrent uses BRPOP to feed jobs to a worker pool for concurrent
// processing. Jobs for distinct games are independent; two jobs for the same
// game serialize on the writer's per-game lock and the later one wins.
func (q *RedisQueue) ConsumeConcurrent(ctx context.Context, queueName string, workerCount, bufferSize int, handler func([]byte) error) error {
	logger := logging.Logger()
	if queueName == "" {
		queueName = q.key
	}
	retryKey := queueName + retrySuffix
	dlqKey := queueName + dlqSuffix

	jobChan := make(chan []byte, bufferSize)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for payload := range jobChan {
				if err := handler(payload); err != nil {
					logger.Warnf("worker %d: handler error, scheduling retry: %v", workerID, err)
					if err := q.handleRetry(ctx, queueName, retryKey, dlqKey, payload); err != nil {
						logger.Errorf("worker %d: retry handling failed: %v", workerID, err)
					}
					continue
				}
				_ = q.clearRetryCounter(ctx, queueName, payload)
			}
			logger.Infof("worker %d: exiting", workerID)
		}(i)
	}

	logger.Infof("started %d concurrent workers for queue %s", workerCount, queueName)

	for {
		if ctx.Err() != nil {
			logger.Warnf("redis consumer exiting: %v", ctx.Err())
			close(jobChan)
			wg.Wait()
			return ctx.Err()
		}

		payload, ok := q.pop(ctx, queueName, retryKey)
		if !ok {
			continue
		}

		select {
		case jobChan <- payload:
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return ctx.Err()
		}
	}
}

// pop blocks on the retry and main lists and returns the next payload, or
// false when the pop timed out or failed transiently.
func (q *RedisQueue) pop(ctx context.Context, queueName, retryKey string) ([]byte, bool) {
	logger := logging.Logger()
	result, err := q.client.BRPop(ctx, brPopBlock, retryKey, queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false
		}
		if ctx.Err() == nil {
			logger.Warnf("redis BRPOP error: %v", err)
		}
		return nil, false
	}
	if len(result) < 2 {
		return nil, false
	}
	return []byte(result[1]), true
}

func (q *RedisQueue) handleRetry(ctx context.Context, baseQueue, retryKey, dlqKey string, payload []byte) error {
	logger := logging.Logger()
	attempt, err := q.incrementRetryCounter(ctx, baseQueue, payload)
	if err != nil {
		return err
	}
	if attempt > maxRetryAttempts {
		logger.Warnf("moving job to DLQ after %d attempts", attempt-1)
		_ = q.client.LPush(ctx, dlqKey, payload).Err()
		_ = q.clearRetryCounter(ctx, baseQueue, payload)
		return nil
	}
	return q.client.LPush(ctx, retryKey, payload).Err()
}

func (q *RedisQueue) incrementRetryCounter(ctx context.Context, queueName string, payload []byte) (int64, error) {
	key := retryCounterKey(queueName, payload)
	count, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = q.client.Expire(ctx, key, 24*time.Hour).Err()
	return count, nil
}

func (q *RedisQueue) clearRetryCounter(ctx context.Context, queueName string, payload []byte) error {
	key := retryCounterKey(queueName, payload)
	return q.client.Del(ctx, key).Err()
}

func retryCounterKey(queue string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s%s%s", queue, retryCounterSuffix, hex.EncodeToString(sum[:]))
}
