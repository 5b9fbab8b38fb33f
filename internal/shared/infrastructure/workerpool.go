package infrastructure

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolStopped est retournée par Submit quand le pool est arrêté
var ErrPoolStopped = errors.New("worker pool is stopped")

// Task représente une tâche à exécuter
type Task func(ctx context.Context) error

// WorkerPool gère un pool de workers pour traiter des tâches en parallèle
// La première erreur d'une tâche annule le contexte du pool
type WorkerPool struct {
	workerCount int
	tasks       chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	errOnce  sync.Once
	firstErr error
}

// NewWorkerPool crée un nouveau pool de workers
func NewWorkerPool(workerCount int) *WorkerPool {
	return NewWorkerPoolWithContext(context.Background(), workerCount)
}

// NewWorkerPoolWithContext crée un pool dont les tâches s'arrêtent avec ctx
func NewWorkerPoolWithContext(ctx context.Context, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		tasks:       make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// worker est la routine d'exécution des tâches
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task, ok := <-wp.tasks:
			if !ok {
				return
			}
			if err := task(wp.ctx); err != nil {
				wp.errOnce.Do(func() {
					wp.firstErr = err
					wp.cancel()
				})
			}
		}
	}
}

// Start démarre les workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Submit soumet une tâche au pool
func (wp *WorkerPool) Submit(task Task) error {
	select {
	case <-wp.ctx.Done():
		return ErrPoolStopped
	case wp.tasks <- task:
		return nil
	}
}

// Wait attend que toutes les tâches soient terminées et ferme le canal de tâches
// Retourne la première erreur de tâche, ou l'erreur du contexte parent
func (wp *WorkerPool) Wait() error {
	close(wp.tasks)
	wp.wg.Wait()
	defer wp.cancel()

	if wp.firstErr != nil {
		return wp.firstErr
	}
	return context.Cause(wp.ctx)
}

// Stop arrête le pool immédiatement
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
}

// WorkerCount retourne le nombre de workers
func (wp *WorkerPool) WorkerCount() int {
	return wp.workerCount
}
