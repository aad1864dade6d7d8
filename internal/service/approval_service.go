package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type approvalRepository interface {
	ListPending(ctx context.Context) ([]models.PendingAccount, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Approve(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

// ApprovalService gates newly registered teacher/parent accounts.
type ApprovalService struct {
	repo   approvalRepository
	logger *zap.Logger
}

// NewApprovalService constructs an ApprovalService.
func NewApprovalService(repo approvalRepository, logger *zap.Logger) *ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{repo: repo, logger: logger}
}

// ListPending returns all accounts awaiting approval. The set is expected to
// stay small at single-school scale, so no pagination is applied.
func (s *ApprovalService) ListPending(ctx context.Context) ([]models.PendingAccount, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending accounts")
	}
	if pending == nil {
		pending = []models.PendingAccount{}
	}
	return pending, nil
}

// Approve marks the account approved. Approving an already approved account
// is a no-op, not an error.
func (s *ApprovalService) Approve(ctx context.Context, userID string) error {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if err := s.repo.Approve(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve account")
	}
	s.logger.Info("account approved", zap.String("user_id", userID))
	return nil
}

// Reject removes the account entirely. The delete cascades to role
// assignments, links and messages at the store, so a failed delete leaves no
// partial state.
func (s *ApprovalService) Reject(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject account")
	}
	s.logger.Info("account rejected", zap.String("user_id", userID))
	return nil
}
