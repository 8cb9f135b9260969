package workers

import (
	"chat-relay/contract"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const waitTimeBeforeRestart = 200 * time.Millisecond

// Supervisor keeps the relay workers (reactor, acceptors, monitoring) running.
//
// A worker that panics or returns an error is restarted after a short pause. A worker
// returning nil is done. When a worker has been restarted maxRestarts times and fails
// again, the supervisor stops every worker and Run reports it: a relay without its
// reactor or its listener cannot serve anyone.
type Supervisor struct {
	Cancel      context.CancelFunc
	wg          *sync.WaitGroup
	log         *slog.Logger
	workers     []contract.Worker
	maxRestarts int

	failOnce sync.Once
	failure  error
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, log: log}
}

// WithMaxRestarts bounds the restarts of each worker. Zero restarts forever.
func (s *Supervisor) WithMaxRestarts(n int) *Supervisor {
	s.maxRestarts = n
	return s
}

// Run starts every added worker and blocks until all of them are done. It returns
// errors.ErrGaveUp when a worker exhausted its restarts, nil otherwise.
func (s *Supervisor) Run(ctx context.Context) error {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
	return s.failure
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs worker under supervision. A panic is turned into errors.ErrWorkerPanic
// and counts as a failure.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	name := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()
		log := s.log.With("worker", name)

		for restarts := 0; ; restarts++ {
			err := runGuarded(ctx, worker)
			switch {
			case err == nil:
				log.Info("Worker finished")
				return
			case ctx.Err() != nil:
				log.Info("Worker stopped")
				return
			case s.maxRestarts > 0 && restarts >= s.maxRestarts:
				s.giveUp(log, fmt.Errorf("%w: %s failed after %d restarts: %w", errors.ErrGaveUp, name, restarts, err))
				return
			}

			log.Warn("Worker failed, restarting", "restarts", restarts, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(waitTimeBeforeRestart):
			}
		}
	}()
}

func runGuarded(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

func (s *Supervisor) giveUp(log *slog.Logger, err error) {
	s.failOnce.Do(func() {
		s.failure = err
		log.Error("Giving up, stopping the relay", "error", err)
		s.Stop()
	})
}

// Stop cancels every supervised worker. Run returns once they are all done.
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
