package emailban

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository is the ban storage used by the service
type Repository interface {
	ListByEmail(ctx context.Context, email string) ([]*Ban, error)
	GetByID(ctx context.Context, banID uuid.UUID) (*Ban, error)
	SubmitAppeal(ctx context.Context, banID uuid.UUID, appeal string, at time.Time) error
	ListPendingAppeals(ctx context.Context) ([]*Ban, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Own returns the bans of email, newest first
func (s *Service) Own(ctx context.Context, email string) ([]*Ban, error) {
	return s.repo.ListByEmail(ctx, strings.ToLower(email))
}

// GetOwn returns one ban of email. Bans of other addresses are reported as not found.
func (s *Service) GetOwn(ctx context.Context, email string, banID uuid.UUID) (*Ban, error) {
	ban, err := s.repo.GetByID(ctx, banID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(ban.Email, email) {
		return nil, ErrNotFound
	}
	return ban, nil
}

// Appeal submits the single allowed appeal for one of email's bans
func (s *Service) Appeal(ctx context.Context, email string, banID uuid.UUID, text string) error {
	text = strings.TrimSpace(text)

	ban, err := s.GetOwn(ctx, email, banID)
	if err != nil {
		return err
	}
	if ban.Appealed() {
		return ErrAlreadyAppealed
	}
	if text == "" {
		return ErrAppealRequired
	}

	return s.repo.SubmitAppeal(ctx, banID, text, s.now().UTC())
}

// PendingAppeals lists appeals awaiting review
func (s *Service) PendingAppeals(ctx context.Context) ([]*Ban, error) {
	return s.repo.ListPendingAppeals(ctx)
}

// GetAppeal returns any ban for review
func (s *Service) GetAppeal(ctx context.Context, banID uuid.UUID) (*Ban, error) {
	return s.repo.GetByID(ctx, banID)
}
