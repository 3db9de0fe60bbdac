package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-interests-api/internal/notifier"
	"github.com/FACorreiaa/go-interests-api/internal/types"
)

// MockRecordsRepo is a mock implementation of the RecordsRepository interface
type MockRecordsRepo struct {
	mock.Mock
}

func (m *MockRecordsRepo) ListAll(ctx context.Context) ([]types.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Record), args.Error(1)
}

func (m *MockRecordsRepo) Create(ctx context.Context, req types.CreateRecordRequest) (types.RecordID, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.RecordID), args.Error(1)
}

func (m *MockRecordsRepo) Search(ctx context.Context, term string) ([]types.Record, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Record), args.Error(1)
}

func (m *MockRecordsRepo) UpdateValue(ctx context.Context, id types.RecordID, value string) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

func (m *MockRecordsRepo) ListWithInterest(ctx context.Context) ([]types.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Record), args.Error(1)
}

func newTestService(repo RecordsRepository, ttl time.Duration) (*RecordsServiceImpl, *notifier.Hub) {
	hub := notifier.NewHub(4, testLogger())
	return NewRecordsService(repo, hub, ttl, testLogger()), hub
}

func TestRecordsService_UpdateValuePublishes(t *testing.T) {
	mockRepo := new(MockRecordsRepo)
	service, hub := newTestService(mockRepo, 0)
	events, cancel := hub.Subscribe()
	defer cancel()

	mockRepo.On("UpdateValue", mock.Anything, types.RecordID(7), "hiking").Return(nil).Once()

	err := service.UpdateValue(context.Background(), 7, "hiking")
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, notifier.TopicUpdate, ev.Topic)
	default:
		t.Fatal("expected an update signal")
	}
	assert.Len(t, events, 0)
	mockRepo.AssertExpectations(t)
}

func TestRecordsService_UpdateValueNotFoundDoesNotPublish(t *testing.T) {
	mockRepo := new(MockRecordsRepo)
	service, hub := newTestService(mockRepo, 0)
	events, cancel := hub.Subscribe()
	defer cancel()

	mockRepo.On("UpdateValue", mock.Anything, types.RecordID(99), "hiking").
		Return(types.ErrNotFound).Once()

	err := service.UpdateValue(context.Background(), 99, "hiking")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Len(t, events, 0)
	mockRepo.AssertExpectations(t)
}

func TestRecordsService_UpdateValueValidation(t *testing.T) {
	mockRepo := new(MockRecordsRepo)
	service, _ := newTestService(mockRepo, 0)

	assert.ErrorIs(t, service.UpdateValue(context.Background(), 0, "hiking"), types.ErrValidation)
	assert.ErrorIs(t, service.UpdateValue(context.Background(), 3, "   "), types.ErrValidation)
	mockRepo.AssertNotCalled(t, "UpdateValue", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordsService_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRecordsRepo)
		service, hub := newTestService(mockRepo, 0)
		events, cancel := hub.Subscribe()
		defer cancel()

		req := types.CreateRecordRequest{Name: "Ann", Division: "Eng", Location: "NYC"}
		mockRepo.On("Create", mock.Anything, req).Return(types.RecordID(42), nil).Once()

		id, err := service.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, types.RecordID(42), id)
		assert.Len(t, events, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Invalid", func(t *testing.T) {
		mockRepo := new(MockRecordsRepo)
		service, _ := newTestService(mockRepo, 0)

		_, err := service.Create(context.Background(), types.CreateRecordRequest{Name: "Ann"})
		assert.ErrorIs(t, err, types.ErrValidation)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error", func(t *testing.T) {
		mockRepo := new(MockRecordsRepo)
		service, _ := newTestService(mockRepo, 0)

		req := types.CreateRecordRequest{Name: "Ann", Division: "Eng", Location: "NYC"}
		mockRepo.On("Create", mock.Anything, req).Return(types.RecordID(0), errors.New("database error")).Once()

		_, err := service.Create(context.Background(), req)
		assert.ErrorContains(t, err, "database error")
	})
}

func TestRecordsService_SearchRequiresTerm(t *testing.T) {
	mockRepo := new(MockRecordsRepo)
	service, _ := newTestService(mockRepo, 0)

	_, err := service.Search(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrValidation)

	mockRepo.On("Search", mock.Anything, "An").Return([]types.Record{{ID: 1, Name: "Ann"}}, nil).Once()
	records, err := service.Search(context.Background(), "An")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	mockRepo.AssertExpectations(t)
}

func TestRecordsService_ListCacheInvalidatedByMutation(t *testing.T) {
	mockRepo := new(MockRecordsRepo)
	service, _ := newTestService(mockRepo, time.Minute)
	ctx := context.Background()

	first := []types.Record{{ID: 1, Name: "Ann"}}
	mockRepo.On("ListAll", mock.Anything).Return(first, nil).Once()

	got, err := service.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = service.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	mockRepo.AssertNumberOfCalls(t, "ListAll", 1)

	mockRepo.On("UpdateValue", mock.Anything, types.RecordID(1), "chess").Return(nil).Once()
	require.NoError(t, service.UpdateValue(ctx, 1, "chess"))

	value := "chess"
	second := []types.Record{{ID: 1, Name: "Ann", Value: &value}}
	mockRepo.On("ListAll", mock.Anything).Return(second, nil).Once()

	got, err = service.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
	mockRepo.AssertNumberOfCalls(t, "ListAll", 2)
}

func TestRecordsService_ListLoadedBeforeUpdateIsNotCached(t *testing.T) {
	mockRepo := new(MockRecordsRepo)
	service, _ := newTestService(mockRepo, time.Minute)
	ctx := context.Background()

	loading := make(chan struct{})
	release := make(chan struct{})
	stale := []types.Record{{ID: 1, Name: "Ann"}}
	mockRepo.On("ListAll", mock.Anything).Return(stale, nil).Run(func(mock.Arguments) {
		close(loading)
		<-release
	}).Once()

	done := make(chan []types.Record)
	go func() {
		got, err := service.ListAll(ctx)
		assert.NoError(t, err)
		done <- got
	}()
	<-loading

	mockRepo.On("UpdateValue", mock.Anything, types.RecordID(1), "hiking").Return(nil).Once()
	require.NoError(t, service.UpdateValue(ctx, 1, "hiking"))

	close(release)
	assert.Equal(t, stale, <-done)

	value := "hiking"
	fresh := []types.Record{{ID: 1, Name: "Ann", Value: &value}}
	mockRepo.On("ListAll", mock.Anything).Return(fresh, nil).Once()

	got, err := service.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Value)
	assert.Equal(t, "hiking", *got[0].Value)
	mockRepo.AssertNumberOfCalls(t, "ListAll", 2)
}

func TestRecordsService_ListErrorsAreNotCached(t *testing.T) {
	mockRepo := new(MockRecordsRepo)
	service, _ := newTestService(mockRepo, time.Minute)

	mockRepo.On("ListWithInterest", mock.Anything).Return(nil, errors.New("database error")).Once()
	_, err := service.ListWithInterest(context.Background())
	require.Error(t, err)

	mockRepo.On("ListWithInterest", mock.Anything).Return([]types.Record{}, nil).Once()
	records, err := service.ListWithInterest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	mockRepo.AssertExpectations(t)
}
