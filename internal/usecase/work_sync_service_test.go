package usecase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

// MockWorkRepository is a mock implementation of WorkRepository
type MockWorkRepository struct {
	mock.Mock
}

func (m *MockWorkRepository) Upsert(ctx context.Context, work *model.Work) error {
	args := m.Called(ctx, work)
	return args.Error(0)
}

func (m *MockWorkRepository) List(ctx context.Context) ([]model.Work, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Work), args.Error(1)
}

func (m *MockWorkRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Work, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Work), args.Error(1)
}

const prototypePage = `<html><head>
<title>お寿司deゲーミングピアノ！ | プロトタイプ共有サイト</title>
<meta name="description" content="お寿司を叩くと光って音が鳴る楽器デバイス">
<meta property="og:image" content="https://example.com/thumb.png">
</head><body></body></html>`

func newSyncService(repo *MockWorkRepository, baseURL string, workIDs []string) *usecase.WorkSyncService {
	logger := zap.NewNop()
	workService := usecase.NewWorkService(repo, nil, logger)
	return usecase.NewWorkSyncService(repo, workService, logger, baseURL, workIDs, 0, 2*time.Second)
}

func TestWorkSyncService_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("scrapes and upserts every configured work", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(prototypePage))
		}))
		defer server.Close()

		repo := new(MockWorkRepository)
		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Work")).Return(nil)

		service := newSyncService(repo, server.URL, []string{"6345", "6347"})

		result, err := service.Sync(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, result.Synced)
		assert.Equal(t, 0, result.Failed)

		work := repo.Calls[0].Arguments.Get(1).(*model.Work)
		assert.Equal(t, "6345", work.ExternalID)
		assert.Equal(t, "お寿司deゲーミングピアノ！", work.Title)
		assert.Equal(t, "お寿司を叩くと光って音が鳴る楽器デバイス", work.Summary)
		assert.Equal(t, "https://example.com/thumb.png", work.ThumbnailURL)
		assert.Equal(t, server.URL+"/prototype/6345", work.URL)
		repo.AssertNumberOfCalls(t, "Upsert", 2)
	})

	t.Run("one failing fetch does not abort the run", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/prototype/broken" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(prototypePage))
		}))
		defer server.Close()

		repo := new(MockWorkRepository)
		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Work")).Return(nil)

		service := newSyncService(repo, server.URL, []string{"6345", "broken", "6347"})

		result, err := service.Sync(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, result.Synced)
		assert.Equal(t, 1, result.Failed)
		repo.AssertNumberOfCalls(t, "Upsert", 2)
	})

	t.Run("a failing upsert counts as failed and continues", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(prototypePage))
		}))
		defer server.Close()

		repo := new(MockWorkRepository)
		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Work")).Return(assert.AnError).Once()
		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Work")).Return(nil)

		service := newSyncService(repo, server.URL, []string{"1", "2"})

		result, err := service.Sync(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, result.Synced)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("refuses a second run while one is active", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		var once sync.Once
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			once.Do(func() { close(started) })
			<-release
			w.Write([]byte(prototypePage))
		}))
		defer server.Close()

		repo := new(MockWorkRepository)
		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		service := newSyncService(repo, server.URL, []string{"6345"})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.Sync(ctx)
		}()

		// Wait until the first run is blocked inside the fetch
		<-started
		_, err := service.Sync(ctx)
		assert.ErrorIs(t, err, domainErrors.ErrSyncInProgress)

		close(release)
		wg.Wait()

		// With the first run finished a new one is allowed again
		result, err := service.Sync(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Synced)
	})
}

func TestWorkService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("reads from the repository when no cache is configured", func(t *testing.T) {
		repo := new(MockWorkRepository)
		works := []model.Work{{ExternalID: "6345", Title: "A"}}
		repo.On("List", ctx).Return(works, nil)

		service := usecase.NewWorkService(repo, nil, zap.NewNop())

		got, err := service.List(ctx)

		assert.NoError(t, err)
		assert.Equal(t, works, got)
	})
}
