package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

const DefaultInterval = 15 * time.Second

// Refresher runs a single status check for a request.
type Refresher interface {
	RefreshStatus(ctx context.Context, requestID string) (*domain.MembershipRequest, error)
	ListPollable(ctx context.Context) ([]domain.MembershipRequest, error)
}

type watch struct {
	cancel context.CancelFunc
}

// Poller keeps one goroutine per watched request and checks GitHub on a
// fixed interval until the request joins or stops being pollable.
type Poller struct {
	svc      Refresher
	interval time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	watches map[string]*watch
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

func New(svc Refresher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		svc:      svc,
		interval: interval,
		log:      logger.WithComponent("poller"),
		watches:  make(map[string]*watch),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Watch starts polling the request. Watching an already watched request is a no-op.
func (p *Poller) Watch(requestID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	if _, ok := p.watches[requestID]; ok {
		return
	}

	ctx, cancel := context.WithCancel(p.ctx)
	w := &watch{cancel: cancel}
	p.watches[requestID] = w
	p.wg.Add(1)
	go p.run(ctx, requestID, w)

	p.log.Debug("Watching membership request", "request_id", requestID)
}

// Unwatch cancels polling for the request.
func (p *Poller) Unwatch(requestID string) {
	p.mu.Lock()
	w, ok := p.watches[requestID]
	if ok {
		delete(p.watches, requestID)
	}
	p.mu.Unlock()

	if ok {
		w.cancel()
	}
}

// Active returns the number of requests being watched.
func (p *Poller) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watches)
}

// Stop cancels every watch and waits for the loops to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	p.mu.Lock()
	p.watches = make(map[string]*watch)
	p.mu.Unlock()
	p.log.Info("Status poller stopped")
}

// Resume watches every pollable request in the store and returns how many it found.
func (p *Poller) Resume(ctx context.Context) (int, error) {
	reqs, err := p.svc.ListPollable(ctx)
	if err != nil {
		return 0, err
	}
	for _, req := range reqs {
		p.Watch(req.ID)
	}
	p.log.Info("Resumed status polling", "pollable", len(reqs), "active", p.Active())
	return len(reqs), nil
}

func (p *Poller) run(ctx context.Context, requestID string, w *watch) {
	defer p.wg.Done()
	defer p.release(requestID, w)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		req, err := p.svc.RefreshStatus(ctx, requestID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, domain.ErrNotFound) {
				p.log.Warn("Watched membership request no longer exists", "request_id", requestID)
				return
			}
			p.log.Warn("Status poll failed", "request_id", requestID, "error", err)
			continue
		}

		if !req.Status.IsPollable() {
			p.log.Info("Stopped polling membership request", "request_id", requestID, "status", req.Status)
			return
		}
	}
}

func (p *Poller) release(requestID string, w *watch) {
	p.mu.Lock()
	if p.watches[requestID] == w {
		delete(p.watches, requestID)
	}
	p.mu.Unlock()
	w.cancel()
}
