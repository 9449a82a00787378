package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task is the payload of one background analysis: everything the processor
// needs, captured at submission time.
type Task struct {
	JobID             uuid.UUID
	Fingerprint       string
	DocumentText      string
	TargetDescription string
	// CleanupPath is a transient input artifact the task owns and removes
	// best-effort once the analysis is done. Empty means nothing to clean.
	CleanupPath string
}

// TaskProcessor runs one analysis task to its terminal job state. It never
// returns an error: failures are recorded on the job record.
type TaskProcessor interface {
	Process(ctx context.Context, task Task)
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(task Task)
}

type worker struct {
	processor   TaskProcessor
	taskQueue   chan Task
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	logger      *zap.SugaredLogger
}

func NewWorker(processor TaskProcessor, concurrency, queueSize int, logger *zap.SugaredLogger) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &worker{
		processor:   processor,
		taskQueue:   make(chan Task, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		logger:      logger,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Infof("🚀 Starting worker with %d concurrent workers", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processTasks(ctx, i+1)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.logger.Info("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("✅ Worker stopped")
}

// Enqueue implements Worker.
func (w *worker) Enqueue(task Task) {
	select {
	case w.taskQueue <- task:
		w.logger.Infof("📥 Job %s enqueued", task.JobID)
	case <-w.stopChan:
		w.logger.Warnf("⚠️ Worker stopped, cannot enqueue job %s", task.JobID)
	}
}

func (w *worker) processTasks(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.logger.Infof("👷 Worker #%d stopped", workerID)
			return
		case task := <-w.taskQueue:
			w.logger.Infof("👷 Worker #%d processing job %s", workerID, task.JobID)
			w.processor.Process(ctx, task)
		}
	}
}
