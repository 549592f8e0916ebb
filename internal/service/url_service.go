package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/Kosench/keyed-url-shortener/internal/errors"
	"github.com/Kosench/keyed-url-shortener/internal/keygen"
	"github.com/Kosench/keyed-url-shortener/internal/metrics"
	"github.com/Kosench/keyed-url-shortener/internal/model"
	"github.com/Kosench/keyed-url-shortener/internal/repository"
	"github.com/Kosench/keyed-url-shortener/internal/utils"
)

type URLService struct {
	urlRepo repository.URLRepository
	keygen  *keygen.Generator
	baseURL string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewURLService(
	urlRepo repository.URLRepository,
	gen *keygen.Generator,
	baseURL string,
	m *metrics.Metrics,
	logger *zap.Logger,
) *URLService {
	return &URLService{
		urlRepo: urlRepo,
		keygen:  gen,
		baseURL: baseURL,
		metrics: m,
		logger:  logger.With(zap.String("component", "url_service")),
	}
}

// CreateEntry validates targetURL and stores it under a fresh key pair. A
// concurrent insert that wins the same key is retried with new keys.
func (s *URLService) CreateEntry(ctx context.Context, targetURL string) (model.URLEntry, error) {
	targetURL = utils.SanitizeInput(targetURL)
	if err := utils.ValidateURL(targetURL); err != nil {
		s.metrics.RecordCreation(metrics.StatusInvalid)
		return model.URLEntry{}, err
	}

	entry, err := s.createWithRetry(ctx, targetURL)
	if err != nil {
		s.metrics.RecordCreation(metrics.StatusError)
		s.logger.Error("failed to create entry", zap.Error(err))
		return model.URLEntry{}, err
	}

	s.metrics.RecordCreation(metrics.StatusSuccess)
	s.logger.Info("entry created", zap.String("key", entry.Key), zap.Int64("id", entry.ID))

	return entry, nil
}

func (s *URLService) createWithRetry(ctx context.Context, targetURL string) (model.URLEntry, error) {
	maxAttempts := s.keygen.MaxAttempts()

	for attempt := 1; maxAttempts == 0 || attempt <= maxAttempts; attempt++ {
		key, err := s.keygen.UniqueKey(ctx)
		if err != nil {
			return model.URLEntry{}, fmt.Errorf("failed to generate key: %w", err)
		}

		secretKey, err := s.keygen.SecretKey(ctx, key)
		if err != nil {
			return model.URLEntry{}, fmt.Errorf("failed to generate secret key: %w", err)
		}

		entry, err := s.urlRepo.Create(ctx, model.URLEntry{
			Key:       key,
			SecretKey: secretKey,
			TargetURL: targetURL,
		})
		if errors.Is(err, apperrors.ErrKeyConflict) {
			s.logger.Warn("key taken by concurrent insert, retrying",
				zap.String("key", key), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return model.URLEntry{}, err
		}

		return entry, nil
	}

	return model.URLEntry{}, apperrors.NewBusinessError(
		apperrors.CodeKeyspaceExhausted,
		"failed to store a unique key",
		fmt.Errorf("gave up after %d attempts", maxAttempts),
	)
}

// ResolveForRedirect counts a click on the active entry for key and returns
// it with the updated count.
func (s *URLService) ResolveForRedirect(ctx context.Context, key string) (model.URLEntry, error) {
	entry, err := s.urlRepo.IncrementClicks(ctx, key)
	s.metrics.RecordRedirect(outcome(err))
	return entry, err
}

// ResolveForAdmin looks an entry up by secret key regardless of its state.
func (s *URLService) ResolveForAdmin(ctx context.Context, secretKey string) (model.URLEntry, error) {
	entry, err := s.urlRepo.GetBySecretKey(ctx, secretKey)
	s.metrics.RecordAdminOperation(metrics.OperationLookup, outcome(err))
	return entry, err
}

func (s *URLService) Activate(ctx context.Context, secretKey string) (model.URLEntry, error) {
	return s.setActive(ctx, secretKey, true, metrics.OperationActivate)
}

func (s *URLService) Deactivate(ctx context.Context, secretKey string) (model.URLEntry, error) {
	return s.setActive(ctx, secretKey, false, metrics.OperationDeactivate)
}

func (s *URLService) setActive(ctx context.Context, secretKey string, active bool, operation string) (model.URLEntry, error) {
	entry, err := s.urlRepo.SetActive(ctx, secretKey, active)
	s.metrics.RecordAdminOperation(operation, outcome(err))
	if err == nil {
		s.logger.Info("entry state changed",
			zap.String("key", entry.Key), zap.Bool("active", entry.IsActive))
	}
	return entry, err
}

// Info renders the public view of entry with absolute URLs.
func (s *URLService) Info(entry model.URLEntry) model.URLInfo {
	return model.URLInfo{
		TargetURL: entry.TargetURL,
		IsActive:  entry.IsActive,
		Clicks:    entry.Clicks,
		URL:       fmt.Sprintf("%s/%s", s.baseURL, entry.Key),
		AdminURL:  fmt.Sprintf("%s/admin/%s", s.baseURL, entry.SecretKey),
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, apperrors.ErrURLNotFound):
		return metrics.StatusNotFound
	default:
		return metrics.StatusError
	}
}
