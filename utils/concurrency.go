package utils

import (
	"errors"
	"sync"
	"time"
)

// WorkerPool runs jobs on a bounded number of goroutines and spaces job
// starts by at least the configured interval.
type WorkerPool struct {
	interval  time.Duration
	semaphore chan struct{}
	wg        sync.WaitGroup

	mu        sync.Mutex
	lastStart time.Time
	errs      []error
}

// NewWorkerPool creates a WorkerPool with the given concurrency and rate limit.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		interval:  time.Duration(rateLimitMs) * time.Millisecond,
		semaphore: make(chan struct{}, maxWorkers),
	}
}

// Submit enqueues a job. It blocks while every worker slot is taken.
func (wp *WorkerPool) Submit(job func() error) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.waitTurn()
		if err := job(); err != nil {
			wp.mu.Lock()
			wp.errs = append(wp.errs, err)
			wp.mu.Unlock()
		}
	}()
}

// Wait blocks until all submitted jobs have completed and returns the
// joined job errors, if any. The pool is reusable afterwards.
func (wp *WorkerPool) Wait() error {
	wp.wg.Wait()

	wp.mu.Lock()
	defer wp.mu.Unlock()
	err := errors.Join(wp.errs...)
	wp.errs = nil
	return err
}

func (wp *WorkerPool) waitTurn() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.lastStart.IsZero() {
		if elapsed := time.Since(wp.lastStart); elapsed < wp.interval {
			time.Sleep(wp.interval - elapsed)
		}
	}
	wp.lastStart = time.Now()
}

// KeySet is a thread-safe set of strings (listing URLs, IDs).
type KeySet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewKeySet creates an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{seen: make(map[string]struct{})}
}

// Add returns true if the key was newly added, false if already present.
func (s *KeySet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}
