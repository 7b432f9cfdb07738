// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package queue provides the Valkey (Redis-compatible) job queue the
// pipeline schedules work on. Jobs are (jobType, entityID) pairs pushed to
// a list; workers move them to a processing list while handling them, so a
// crashed worker's jobs survive and are recovered on the next start.
// Delivery is at least once; every handler must tolerate duplicates.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Job is one unit of schedulable work.
type Job struct {
	Type     string    `json:"type"`
	EntityID uuid.UUID `json:"entity_id"`
}

// Connect creates a Valkey client and verifies the connection with a ping.
func Connect(host, port, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", fmt.Sprintf("%s:%s", host, port))
	return client, nil
}

// Queue is a reliable list-based job queue on a single Valkey list.
type Queue struct {
	client     *redis.Client
	key        string
	processing string
}

// New creates a queue named by key. Jobs being worked on live in
// "<key>:processing" until acknowledged.
func New(client *redis.Client, key string) *Queue {
	return &Queue{
		client:     client,
		key:        key,
		processing: key + ":processing",
	}
}

// Enqueue pushes a job onto the queue.
func (q *Queue) Enqueue(ctx context.Context, jobType string, entityID uuid.UUID) error {
	payload, err := json.Marshal(Job{Type: jobType, EntityID: entityID})
	if err != nil {
		return fmt.Errorf("queue marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("queue enqueue: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next job, moving its payload to the
// processing list. Returns the job and its raw payload (needed to ack), or
// redis.Nil via the error when the timeout elapses with no job.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, string, error) {
	payload, err := q.client.BLMove(ctx, q.key, q.processing, "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		return nil, "", err
	}

	var job Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		// Unparseable payloads are acked away so they cannot wedge the queue.
		q.Ack(ctx, payload)
		return nil, "", fmt.Errorf("queue unmarshal job: %w", err)
	}
	return &job, payload, nil
}

// Ack removes a handled job's payload from the processing list.
func (q *Queue) Ack(ctx context.Context, payload string) error {
	return q.client.LRem(ctx, q.processing, 1, payload).Err()
}

// Requeue moves a job's payload from the processing list back onto the
// queue, for handlers that hit an infrastructure failure.
func (q *Queue) Requeue(ctx context.Context, payload string) error {
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, q.processing, 1, payload)
	pipe.LPush(ctx, q.key, payload)
	_, err := pipe.Exec(ctx)
	return err
}

// Recover moves every orphaned job from the processing list back onto the
// queue. Called once at startup, before workers begin consuming, to pick
// up work a previous process abandoned mid-flight.
func (q *Queue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, q.processing, q.key, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("queue recover: %w", err)
		}
		moved++
	}
}
