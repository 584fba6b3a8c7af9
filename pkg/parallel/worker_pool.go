// Package parallel provides a small worker pool and range sharding for
// vertex-parallel passes.
package parallel

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// NewWorkerPool creates a new worker pool with the specified number of
// workers. Zero or negative means one worker per CPU.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
	}
	pool.start()
	return pool, nil
}

// Workers returns the pool size
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		// Recover from panics in tasks to prevent worker crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("Worker panic recovered: %v\n", r)
				}
			}()
			task()
		}()
	}
}

// Submit adds a task to the worker pool.
// Returns false if the pool is closed, true if the task was submitted.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	wp.taskQueue <- task
	return true
}

// Close shuts down the worker pool and waits for in-flight tasks
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Range is a half-open index interval [Start, End)
type Range struct {
	Start uint32
	End   uint32
}

// Ranges splits [0, n) into at most parts contiguous ranges of nearly equal
// size. Empty ranges are omitted.
func Ranges(n uint32, parts int) []Range {
	if parts <= 0 {
		parts = 1
	}
	if uint32(parts) > n {
		parts = int(n)
	}
	ranges := make([]Range, 0, parts)
	if parts == 0 {
		return ranges
	}
	size := n / uint32(parts)
	rem := n % uint32(parts)
	start := uint32(0)
	for i := 0; i < parts; i++ {
		end := start + size
		if uint32(i) < rem {
			end++
		}
		if end > start {
			ranges = append(ranges, Range{Start: start, End: end})
		}
		start = end
	}
	return ranges
}
