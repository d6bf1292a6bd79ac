package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Handler processes a single update. Handlers share no mutable state, so the
// poller may run them concurrently. A returned error is logged and contained
// to that update.
type Handler interface {
	HandleUpdate(ctx context.Context, update Update) error
}

type PollerOptions struct {
	API            *Client
	Handler        Handler
	Logger         *slog.Logger
	PollTimeout    time.Duration
	MaxConcurrency int
}

// Poller drives getUpdates long-polling and dispatches each update to the
// handler behind a concurrency semaphore.
type Poller struct {
	api         *Client
	handler     Handler
	logger      *slog.Logger
	pollTimeout time.Duration
	maxConc     int
}

func NewPoller(opts PollerOptions) (*Poller, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("telegram client is required")
	}
	if opts.Handler == nil {
		return nil, fmt.Errorf("update handler is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pollTimeout := opts.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}
	maxConc := opts.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 8
	}
	return &Poller{
		api:         opts.API,
		handler:     opts.Handler,
		logger:      logger,
		pollTimeout: pollTimeout,
		maxConc:     maxConc,
	}, nil
}

// Run polls until ctx is cancelled. It returns nil on cancellation; every
// other poll error is logged and retried after a short pause.
func (p *Poller) Run(ctx context.Context) error {
	sem := make(chan struct{}, p.maxConc)
	var wg sync.WaitGroup
	defer wg.Wait()

	var offset int64
	for {
		updates, nextOffset, err := p.api.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				p.logger.Info("poll_stop", "reason", "context_canceled")
				return nil
			}
			if IsPollTimeout(err) {
				p.logger.Debug("poll_timeout", "error", err.Error())
			} else {
				p.logger.Warn("poll_error", "error", err.Error())
			}
			select {
			case <-ctx.Done():
				p.logger.Info("poll_stop", "reason", "context_canceled")
				return nil
			case <-time.After(1 * time.Second):
			}
			continue
		}
		offset = nextOffset

		for _, u := range updates {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				p.logger.Info("poll_stop", "reason", "context_canceled")
				return nil
			}
			wg.Add(1)
			go func(u Update) {
				defer wg.Done()
				defer func() { <-sem }()
				defer func() {
					if r := recover(); r != nil {
						p.logger.Error("handler_panic", "update_id", u.UpdateID, "panic", fmt.Sprint(r))
					}
				}()
				if err := p.handler.HandleUpdate(ctx, u); err != nil {
					p.logger.Error("handler_error", "update_id", u.UpdateID, "error", err.Error())
				}
			}(u)
		}
	}
}
