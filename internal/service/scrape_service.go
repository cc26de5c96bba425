package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/model"
	appErr "github.com/jobscout/jobscout/internal/pkg/errors"
	"github.com/jobscout/jobscout/internal/queue"
	"github.com/jobscout/jobscout/internal/source"
)

const PlanPro = "pro"

type scrapeStore interface {
	Create(ctx context.Context, req *model.ScrapeRequest) error
	UpdateStatus(ctx context.Context, id, status string, found int, errMsg string) error
	GetByID(ctx context.Context, id string) (*model.ScrapeRequest, error)
	ListByUser(ctx context.Context, userID string, limit uint) ([]model.ScrapeRequest, error)
}

type deepIngestor interface {
	IngestFromSource(ctx context.Context, src source.Source, query, location string) (*IngestReport, error)
}

// ScrapeService owns the deep-scrape lifecycle: authorize, persist the
// request, hand it to the queue, and later run it on the consumer side.
type ScrapeService struct {
	requests    scrapeStore
	queue       queue.Queue
	ingest      deepIngestor
	deepSources map[string]source.Source
	mail        EmailSender
}

func NewScrapeService(requests scrapeStore, q queue.Queue, ingest deepIngestor, deepSources map[string]source.Source, mail EmailSender) *ScrapeService {
	return &ScrapeService{
		requests:    requests,
		queue:       q,
		ingest:      ingest,
		deepSources: deepSources,
		mail:        mail,
	}
}

// Trigger validates and enqueues a deep scrape. The plan gate runs before
// anything touches the queue or the store. The returned request is the
// acknowledgment; the scrape itself happens on the worker.
func (s *ScrapeService) Trigger(ctx context.Context, userID, plan, sourceName, query, location, notify string) (*model.ScrapeRequest, error) {
	if !strings.EqualFold(plan, PlanPro) {
		return nil, appErr.ErrForbidden
	}
	if _, ok := s.deepSources[sourceName]; !ok {
		return nil, appErr.ErrInvalid
	}
	req := &model.ScrapeRequest{
		UserID:   userID,
		Source:   sourceName,
		Query:    query,
		Location: location,
		Notify:   notify,
		Status:   model.ScrapeStatusRequested,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	// QUEUED is written before the dispatch: the consumer may pop the task
	// immediately, and its RUNNING/COMPLETED writes must not be clobbered
	// by a late status update from this side.
	if err := s.requests.UpdateStatus(ctx, req.ID, model.ScrapeStatusQueued, 0, ""); err != nil {
		return nil, err
	}
	req.Status = model.ScrapeStatusQueued
	task := &queue.ScrapeTask{
		RequestID: req.ID,
		Source:    sourceName,
		Query:     query,
		Location:  location,
		Notify:    notify,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		// The caller asked for this scrape specifically; a dispatch
		// failure is their failure, not a silent drop.
		logutil.GetLogger(ctx).Error("deep scrape dispatch failed", zap.String("request_id", req.ID), zap.Error(err))
		_ = s.requests.UpdateStatus(ctx, req.ID, model.ScrapeStatusFailed, 0, err.Error())
		return nil, fmt.Errorf("enqueue deep scrape: %w", appErr.ErrQueueDispatch)
	}
	return req, nil
}

// Get returns a request only to its owner.
func (s *ScrapeService) Get(ctx context.Context, userID, id string) (*model.ScrapeRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, appErr.ErrNotFound
	}
	return req, nil
}

func (s *ScrapeService) ListForUser(ctx context.Context, userID string) ([]model.ScrapeRequest, error) {
	return s.requests.ListByUser(ctx, userID, 50)
}

// HandleTask is the queue consumer side. It runs the deep adapter through
// the regular normalize + persist path and finishes with a best-effort
// notification; a failed email never fails the scrape.
func (s *ScrapeService) HandleTask(ctx context.Context, task *queue.ScrapeTask) error {
	logger := logutil.GetLogger(ctx).With(zap.String("request_id", task.RequestID), zap.String("source", task.Source))
	src, ok := s.deepSources[task.Source]
	if !ok {
		_ = s.requests.UpdateStatus(ctx, task.RequestID, model.ScrapeStatusFailed, 0, "unknown source")
		return fmt.Errorf("unknown deep source: %s", task.Source)
	}
	if err := s.requests.UpdateStatus(ctx, task.RequestID, model.ScrapeStatusRunning, 0, ""); err != nil {
		logger.Error("mark running failed", zap.Error(err))
	}
	report, err := s.ingest.IngestFromSource(ctx, src, task.Query, task.Location)
	if err != nil {
		_ = s.requests.UpdateStatus(ctx, task.RequestID, model.ScrapeStatusFailed, 0, err.Error())
		return fmt.Errorf("deep scrape %s: %w", task.RequestID, err)
	}
	if err := s.requests.UpdateStatus(ctx, task.RequestID, model.ScrapeStatusCompleted, report.Saved, ""); err != nil {
		logger.Error("mark completed failed", zap.Error(err))
	}
	logger.Info("deep scrape completed", zap.Int("saved", report.Saved), zap.Int("failed", report.FailedCount()))
	s.notify(ctx, task, report)
	return nil
}

func (s *ScrapeService) notify(ctx context.Context, task *queue.ScrapeTask, report *IngestReport) {
	if task.Notify == "" || s.mail == nil {
		return
	}
	subject := fmt.Sprintf("Deep scrape finished: %s", task.Query)
	body := fmt.Sprintf(
		"Your deep scrape of %s for %q (%s) finished.\n\nJobs saved: %d\nFailed records: %d\n",
		task.Source, task.Query, task.Location, report.Saved, report.FailedCount(),
	)
	if err := s.mail.Send(task.Notify, subject, body); err != nil {
		logutil.GetLogger(ctx).Warn("completion email failed",
			zap.String("request_id", task.RequestID), zap.Error(err))
	}
}
