package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/kursio/kursio-backend/internal/model"
	"github.com/kursio/kursio-backend/internal/repository"
)

// CertificateService issues completion certificates. Issuance is one-shot per
// learner: the UNIQUE(user_id) constraint decides races, not application code.
type CertificateService struct {
	certRepo  *repository.CertificateRepository
	videoRepo *repository.VideoRepository
	progress  *ProgressService
}

// NewCertificateService creates a new CertificateService.
func NewCertificateService(
	certRepo *repository.CertificateRepository,
	videoRepo *repository.VideoRepository,
	progress *ProgressService,
) *CertificateService {
	return &CertificateService{certRepo: certRepo, videoRepo: videoRepo, progress: progress}
}

// certificateEligible reports whether a learner has completed the course: a
// pass on every active video, and a course that actually has videos.
func certificateEligible(passedCount, activeCount int) bool {
	return activeCount > 0 && passedCount == activeCount
}

// Generate issues a certificate after a fresh reconciliation confirms the
// learner passed every active video. Two concurrent calls both pass the
// eligibility check at worst; the constraint lets exactly one insert win.
func (s *CertificateService) Generate(ctx context.Context, userID int) (*model.Certificate, error) {
	snap, err := s.progress.SyncUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	videos, err := s.videoRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active videos: %w", err)
	}
	if !certificateEligible(len(snap.VideosPassed), len(videos)) {
		return nil, ErrNotEligible
	}

	cert := &model.Certificate{
		UserID:   userID,
		UniqueID: uuid.New(),
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	log.Info().Int("user_id", userID).Str("unique_id", cert.UniqueID.String()).Msg("Certificate issued")
	return cert, nil
}

// GetMine returns the caller's certificate, if issued.
func (s *CertificateService) GetMine(ctx context.Context, userID int) (*model.Certificate, error) {
	cert, err := s.certRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	return cert, nil
}

// Download marks the certificate downloaded and returns it. Learners can only
// download their own.
func (s *CertificateService) Download(ctx context.Context, userID, certID int) (*model.Certificate, error) {
	cert, err := s.certRepo.GetByID(ctx, certID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	if cert.UserID != userID {
		return nil, ErrForbidden
	}

	if err := s.certRepo.MarkDownloaded(ctx, certID); err != nil {
		return nil, fmt.Errorf("mark downloaded: %w", err)
	}
	cert.IsDownloaded = true
	return cert, nil
}

// List returns every issued certificate (admin view).
func (s *CertificateService) List(ctx context.Context) ([]model.Certificate, error) {
	return s.certRepo.List(ctx)
}
