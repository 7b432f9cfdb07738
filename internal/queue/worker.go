// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Handler processes one delivered job. Returning nil acknowledges the job;
// returning an error requeues it for another delivery.
type Handler func(ctx context.Context, entityID uuid.UUID) error

// dequeueTimeout bounds each blocking pop so workers notice shutdown.
const dequeueTimeout = 2 * time.Second

// Pool consumes jobs from a Queue on a fixed number of goroutines and
// dispatches them by job type.
type Pool struct {
	queue    *Queue
	count    int
	handlers map[string]Handler
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewPool creates a worker pool with count goroutines.
func NewPool(q *Queue, count int) *Pool {
	return &Pool{
		queue:    q,
		count:    count,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a job type. Must be called before Start.
func (p *Pool) Register(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start recovers orphaned jobs and launches the workers.
func (p *Pool) Start(ctx context.Context) {
	if moved, err := p.queue.Recover(ctx); err != nil {
		slog.Error("queue recovery failed", "error", err)
	} else if moved > 0 {
		slog.Info("recovered orphaned jobs", "count", moved)
	}

	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	slog.Info("worker pool started", "workers", p.count)
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	slog.Info("worker pool stopped")
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, payload, err := p.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			slog.Error("dequeue failed", "worker", id, "error", err)
			continue
		}

		h, ok := p.handlers[job.Type]
		if !ok {
			slog.Error("no handler for job type", "type", job.Type)
			p.ack(payload)
			continue
		}

		slog.Info("processing job", "worker", id, "type", job.Type, "entity", job.EntityID)

		if err := h(ctx, job.EntityID); err != nil {
			// Infrastructure failure (shutdown, DB outage): put the job
			// back for another delivery.
			slog.Error("job handler failed, requeueing",
				"worker", id, "type", job.Type, "entity", job.EntityID, "error", err)
			p.requeue(payload)
			continue
		}

		p.ack(payload)
	}
}

// ack and requeue use a background context so a handled job is always
// acknowledged even when shutdown cancelled the worker context.
func (p *Pool) ack(payload string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.queue.Ack(ctx, payload); err != nil {
		slog.Error("job ack failed", "error", err)
	}
}

func (p *Pool) requeue(payload string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.queue.Requeue(ctx, payload); err != nil {
		slog.Error("job requeue failed", "error", err)
	}
}
