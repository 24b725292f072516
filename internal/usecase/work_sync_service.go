package usecase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	domainRepo "github.com/furukawa1020/furukawalabo1/internal/domain/repository"
)

// SyncResult summarizes one sync run
type SyncResult struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// WorkSyncService pulls the configured Protopedia prototype pages and
// upserts them as works. One fetch failing never aborts the run, and a
// second sync started while one is running is refused.
type WorkSyncService struct {
	workRepo    domainRepo.WorkRepository
	workService *WorkService
	httpClient  *http.Client
	logger      *zap.Logger
	baseURL     string
	workIDs     []string
	delay       time.Duration
	inFlight    int32
}

// NewWorkSyncService creates a new sync service instance
func NewWorkSyncService(
	workRepo domainRepo.WorkRepository,
	workService *WorkService,
	logger *zap.Logger,
	baseURL string,
	workIDs []string,
	delay time.Duration,
	fetchTimeout time.Duration,
) *WorkSyncService {
	return &WorkSyncService{
		workRepo:    workRepo,
		workService: workService,
		httpClient:  &http.Client{Timeout: fetchTimeout},
		logger:      logger,
		baseURL:     strings.TrimRight(baseURL, "/"),
		workIDs:     workIDs,
		delay:       delay,
	}
}

// Sync fetches every configured work and upserts it. Returns
// ErrSyncInProgress when a run is already active.
func (s *WorkSyncService) Sync(ctx context.Context) (*SyncResult, error) {
	if !atomic.CompareAndSwapInt32(&s.inFlight, 0, 1) {
		return nil, domainErrors.ErrSyncInProgress
	}
	defer atomic.StoreInt32(&s.inFlight, 0)

	s.logger.Info("Starting work sync", zap.Int("total", len(s.workIDs)))

	result := &SyncResult{Total: len(s.workIDs)}
	for i, id := range s.workIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		work, err := s.fetchWork(ctx, id)
		if err != nil {
			s.logger.Warn("Failed to fetch work",
				zap.String("external_id", id),
				zap.Error(err))
			result.Failed++
		} else if err := s.workRepo.Upsert(ctx, work); err != nil {
			s.logger.Error("Failed to save work",
				zap.String("external_id", id),
				zap.Error(err))
			result.Failed++
		} else {
			result.Synced++
		}

		// Rate limit between upstream fetches
		if i < len(s.workIDs)-1 && s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	s.workService.InvalidateCache(ctx)

	s.logger.Info("Work sync finished",
		zap.Int("synced", result.Synced),
		zap.Int("failed", result.Failed))
	return result, nil
}

// fetchWork scrapes one prototype page into a work row
func (s *WorkSyncService) fetchWork(ctx context.Context, id string) (*model.Work, error) {
	url := s.baseURL + "/prototype/" + id

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	page := string(body)

	// The page title carries a " | <site name>" suffix
	title := extractBetween(page, "<title>", "</title>")
	if idx := strings.Index(title, " | "); idx != -1 {
		title = title[:idx]
	}
	if title == "" {
		return nil, fmt.Errorf("no title found at %s", url)
	}

	now := time.Now()
	return &model.Work{
		ExternalID:   id,
		Title:        title,
		Summary:      extractBetween(page, `<meta name="description" content="`, `"`),
		URL:          url,
		ThumbnailURL: extractBetween(page, `<meta property="og:image" content="`, `"`),
		Source:       "protopedia",
		Tags:         model.StringList{"Protopedia"},
		PublishedAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func extractBetween(text, start, end string) string {
	from := strings.Index(text, start)
	if from == -1 {
		return ""
	}
	from += len(start)

	to := strings.Index(text[from:], end)
	if to == -1 {
		return ""
	}
	return text[from : from+to]
}
