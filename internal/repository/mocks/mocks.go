package mocks

import (
	"context"

	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/domain/quote"
	"github.com/stretchr/testify/mock"
)

// CounterStore is a mock for sequence.Store.
type CounterStore struct {
	mock.Mock
}

func (m *CounterStore) Next(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// AuditRepository is a mock for audit.Repository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditRepository) ListByEntity(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error) {
	args := m.Called(ctx, entityType, entityID)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuditRepository) ListByActor(ctx context.Context, actorID string, opts audit.ActorListOptions) ([]audit.Entry, error) {
	args := m.Called(ctx, actorID, opts)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRecorder is a mock for the services' audit recorder.
type AuditRecorder struct {
	mock.Mock
}

func (m *AuditRecorder) Record(ctx context.Context, entityType audit.EntityType, entityID string, action audit.Action, description string, performedBy any, meta map[string]any) {
	m.Called(ctx, entityType, entityID, action, description, performedBy, meta)
}

// JobRepository is a mock for job.Repository.
type JobRepository struct {
	mock.Mock
}

func (m *JobRepository) Create(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *JobRepository) Get(ctx context.Context, id string) (*job.Job, error) {
	args := m.Called(ctx, id)
	if j, ok := args.Get(0).(*job.Job); ok {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JobRepository) Update(ctx context.Context, j *job.Job, expectedVersion int64) error {
	args := m.Called(ctx, j, expectedVersion)
	return args.Error(0)
}

func (m *JobRepository) UpdateGrant(ctx context.Context, id string, grant *editgrant.Grant, expectedVersion int64) error {
	args := m.Called(ctx, id, grant, expectedVersion)
	return args.Error(0)
}

func (m *JobRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *JobRepository) List(ctx context.Context, opts job.ListOptions) ([]job.Summary, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]job.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// QuoteRepository is a mock for quote.Repository.
type QuoteRepository struct {
	mock.Mock
}

func (m *QuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *QuoteRepository) Get(ctx context.Context, id string) (*quote.Quote, error) {
	args := m.Called(ctx, id)
	if q, ok := args.Get(0).(*quote.Quote); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QuoteRepository) Update(ctx context.Context, q *quote.Quote, expectedVersion int64) error {
	args := m.Called(ctx, q, expectedVersion)
	return args.Error(0)
}

func (m *QuoteRepository) UpdateGrant(ctx context.Context, id string, grant *editgrant.Grant, expectedVersion int64) error {
	args := m.Called(ctx, id, grant, expectedVersion)
	return args.Error(0)
}

// JobCreator is a mock for quote.JobCreator.
type JobCreator struct {
	mock.Mock
}

func (m *JobCreator) CreateJob(ctx context.Context, req job.CreateRequest) (*job.Job, error) {
	args := m.Called(ctx, req)
	if j, ok := args.Get(0).(*job.Job); ok {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}
