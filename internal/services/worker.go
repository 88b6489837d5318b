package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/repositories"
)

// Worker indexes newly stored resumes in the background. Indexing failures
// are logged and never reach the upload that produced the resume.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(resumeID uint64)
}

type worker struct {
	resumeRepo  repositories.ResumeRepository
	indexer     ResumeIndexer
	jobQueue    chan uint64
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
	log         logrus.FieldLogger
}

func NewWorker(
	resumeRepo repositories.ResumeRepository,
	indexer ResumeIndexer,
	concurrency int,
	queueSize int,
	log logrus.FieldLogger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &worker{
		resumeRepo:  resumeRepo,
		indexer:     indexer,
		jobQueue:    make(chan uint64, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		log:         log,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.WithField("concurrency", w.concurrency).Info("🚀 Starting index worker")

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker. Jobs already picked up finish; queued ones are dropped.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("🛑 Stopping index worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("✅ Index worker stopped")
	})
}

// EnqueueJob implements Worker. It never blocks the caller: a full queue
// drops the job.
func (w *worker) EnqueueJob(resumeID uint64) {
	select {
	case <-w.stopChan:
		w.log.WithField("resume_id", resumeID).Warn("⚠️ Worker stopped, cannot enqueue job")
		return
	default:
	}

	select {
	case w.jobQueue <- resumeID:
		w.log.WithField("resume_id", resumeID).Debug("📥 Index job enqueued")
	default:
		w.log.WithField("resume_id", resumeID).Warn("⚠️ Index queue full, dropping job")
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.WithField("worker", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Debug("👷 Worker stopped")
			return
		case <-ctx.Done():
			log.Debug("👷 Worker context done")
			return
		case resumeID := <-w.jobQueue:
			if err := w.indexResume(ctx, resumeID); err != nil {
				log.WithField("resume_id", resumeID).WithError(err).Error("❌ Failed to index resume")
			} else {
				log.WithField("resume_id", resumeID).Info("✅ Resume indexed")
			}
		}
	}
}

func (w *worker) indexResume(ctx context.Context, resumeID uint64) error {
	resume, err := w.resumeRepo.GetByID(ctx, resumeID)
	if err != nil {
		return err
	}
	return w.indexer.Index(ctx, resume)
}
