package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jobscout/jobscout/internal/model"
	appErr "github.com/jobscout/jobscout/internal/pkg/errors"
	"github.com/jobscout/jobscout/internal/queue"
	"github.com/jobscout/jobscout/internal/source"
)

type fakeScrapeStore struct {
	records map[string]*model.ScrapeRequest
	nextID  int
}

func newFakeScrapeStore() *fakeScrapeStore {
	return &fakeScrapeStore{records: make(map[string]*model.ScrapeRequest)}
}

func (f *fakeScrapeStore) Create(ctx context.Context, req *model.ScrapeRequest) error {
	f.nextID++
	req.ID = string(rune('a' + f.nextID - 1))
	clone := *req
	f.records[req.ID] = &clone
	return nil
}

func (f *fakeScrapeStore) UpdateStatus(ctx context.Context, id, status string, found int, errMsg string) error {
	record, ok := f.records[id]
	if !ok {
		return appErr.ErrNotFound
	}
	record.Status = status
	record.Found = found
	record.Error = errMsg
	return nil
}

func (f *fakeScrapeStore) GetByID(ctx context.Context, id string) (*model.ScrapeRequest, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return record, nil
}

func (f *fakeScrapeStore) ListByUser(ctx context.Context, userID string, limit uint) ([]model.ScrapeRequest, error) {
	var out []model.ScrapeRequest
	for _, record := range f.records {
		if record.UserID == userID {
			out = append(out, *record)
		}
	}
	return out, nil
}

type fakeQueue struct {
	tasks []*queue.ScrapeTask
	err   error
}

func (f *fakeQueue) Enqueue(ctx context.Context, task *queue.ScrapeTask) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

// syncQueue hands the task to the consumer before Enqueue returns, the way
// the in-memory queue can when the consumer goroutine wins the race.
type syncQueue struct {
	svc *ScrapeService
}

func (s *syncQueue) Enqueue(ctx context.Context, task *queue.ScrapeTask) error {
	return s.svc.HandleTask(ctx, task)
}

type fakeIngestor struct {
	report *IngestReport
	err    error
}

func (f *fakeIngestor) IngestFromSource(ctx context.Context, src source.Source, query, location string) (*IngestReport, error) {
	return f.report, f.err
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func newScrapeFixture(q *fakeQueue, ingest *fakeIngestor, mail *fakeMailer) (*ScrapeService, *fakeScrapeStore) {
	store := newFakeScrapeStore()
	deep := map[string]source.Source{
		"hn_hiring": &fakeSource{name: "hn_hiring"},
	}
	return NewScrapeService(store, q, ingest, deep, mail), store
}

func TestTriggerRejectsFreePlanBeforeDispatch(t *testing.T) {
	q := &fakeQueue{}
	svc, store := newScrapeFixture(q, &fakeIngestor{}, &fakeMailer{})

	_, err := svc.Trigger(context.Background(), "u1", "free", "hn_hiring", "golang", "", "")
	require.ErrorIs(t, err, appErr.ErrForbidden)
	require.Empty(t, q.tasks)
	require.Empty(t, store.records)
}

func TestTriggerRejectsUnknownSource(t *testing.T) {
	q := &fakeQueue{}
	svc, _ := newScrapeFixture(q, &fakeIngestor{}, &fakeMailer{})

	_, err := svc.Trigger(context.Background(), "u1", "pro", "linkedin", "golang", "", "")
	require.ErrorIs(t, err, appErr.ErrInvalid)
	require.Empty(t, q.tasks)
}

func TestTriggerEnqueues(t *testing.T) {
	q := &fakeQueue{}
	svc, store := newScrapeFixture(q, &fakeIngestor{}, &fakeMailer{})

	record, err := svc.Trigger(context.Background(), "u1", "pro", "hn_hiring", "golang", "remote", "me@example.com")
	require.NoError(t, err)
	require.Equal(t, model.ScrapeStatusQueued, record.Status)
	require.Len(t, q.tasks, 1)
	require.Equal(t, record.ID, q.tasks[0].RequestID)
	require.Equal(t, model.ScrapeStatusQueued, store.records[record.ID].Status)
}

func TestTriggerMarksFailedWhenEnqueueFails(t *testing.T) {
	q := &fakeQueue{err: errors.New("redis down")}
	svc, store := newScrapeFixture(q, &fakeIngestor{}, &fakeMailer{})

	_, err := svc.Trigger(context.Background(), "u1", "pro", "hn_hiring", "golang", "", "")
	require.ErrorIs(t, err, appErr.ErrQueueDispatch)
	require.Len(t, store.records, 1)
	for _, record := range store.records {
		require.Equal(t, model.ScrapeStatusFailed, record.Status)
	}
}

func TestTriggerDoesNotClobberConsumerStatus(t *testing.T) {
	store := newFakeScrapeStore()
	deep := map[string]source.Source{
		"hn_hiring": &fakeSource{name: "hn_hiring"},
	}
	report := &IngestReport{Saved: 3, PerSource: map[string]int{"hn_hiring": 3}}
	q := &syncQueue{}
	svc := NewScrapeService(store, q, &fakeIngestor{report: report}, deep, &fakeMailer{})
	q.svc = svc

	record, err := svc.Trigger(context.Background(), "u1", "pro", "hn_hiring", "golang", "", "")
	require.NoError(t, err)
	require.Equal(t, model.ScrapeStatusCompleted, store.records[record.ID].Status)
	require.Equal(t, 3, store.records[record.ID].Found)
}

func TestHandleTaskCompletes(t *testing.T) {
	mail := &fakeMailer{}
	report := &IngestReport{Saved: 7, PerSource: map[string]int{"hn_hiring": 7}}
	svc, store := newScrapeFixture(&fakeQueue{}, &fakeIngestor{report: report}, mail)

	record, err := svc.Trigger(context.Background(), "u1", "pro", "hn_hiring", "golang", "", "me@example.com")
	require.NoError(t, err)

	err = svc.HandleTask(context.Background(), &queue.ScrapeTask{
		RequestID: record.ID, Source: "hn_hiring", Query: "golang", Notify: "me@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, model.ScrapeStatusCompleted, store.records[record.ID].Status)
	require.Equal(t, 7, store.records[record.ID].Found)
	require.Equal(t, []string{"me@example.com"}, mail.sent)
}

func TestHandleTaskMarksFailed(t *testing.T) {
	svc, store := newScrapeFixture(&fakeQueue{}, &fakeIngestor{err: errors.New("blocked")}, &fakeMailer{})

	record, err := svc.Trigger(context.Background(), "u1", "pro", "hn_hiring", "golang", "", "")
	require.NoError(t, err)

	err = svc.HandleTask(context.Background(), &queue.ScrapeTask{RequestID: record.ID, Source: "hn_hiring"})
	require.Error(t, err)
	require.Equal(t, model.ScrapeStatusFailed, store.records[record.ID].Status)
	require.Equal(t, "blocked", store.records[record.ID].Error)
}

func TestHandleTaskToleratesEmailFailure(t *testing.T) {
	mail := &fakeMailer{err: errors.New("smtp down")}
	report := &IngestReport{Saved: 1}
	svc, store := newScrapeFixture(&fakeQueue{}, &fakeIngestor{report: report}, mail)

	record, err := svc.Trigger(context.Background(), "u1", "pro", "hn_hiring", "golang", "", "me@example.com")
	require.NoError(t, err)

	err = svc.HandleTask(context.Background(), &queue.ScrapeTask{
		RequestID: record.ID, Source: "hn_hiring", Notify: "me@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, model.ScrapeStatusCompleted, store.records[record.ID].Status)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, _ := newScrapeFixture(&fakeQueue{}, &fakeIngestor{}, &fakeMailer{})

	record, err := svc.Trigger(context.Background(), "u1", "pro", "hn_hiring", "golang", "", "")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "someone-else", record.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	got, err := svc.Get(context.Background(), "u1", record.ID)
	require.NoError(t, err)
	require.Equal(t, record.ID, got.ID)
}
