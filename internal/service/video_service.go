package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kursio/kursio-backend/internal/model"
	"github.com/kursio/kursio-backend/internal/repository"
)

// VideoService handles lecture video administration. Learner-facing listing
// lives on GateService, which annotates videos with unlock state.
type VideoService struct {
	videoRepo    *repository.VideoRepository
	questionRepo *repository.QuestionRepository
}

// NewVideoService creates a new VideoService.
func NewVideoService(videoRepo *repository.VideoRepository, questionRepo *repository.QuestionRepository) *VideoService {
	return &VideoService{videoRepo: videoRepo, questionRepo: questionRepo}
}

// GetByID retrieves one video.
func (s *VideoService) GetByID(ctx context.Context, id int) (*model.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	return video, nil
}

// List retrieves every video including inactive ones (admin view).
func (s *VideoService) List(ctx context.Context) ([]model.Video, error) {
	return s.videoRepo.List(ctx)
}

// Create inserts a video. New videos start inactive so admins can attach the
// quiz before learners see them.
func (s *VideoService) Create(ctx context.Context, req *model.CreateVideoRequest) (*model.Video, error) {
	video := &model.Video{
		Title:             req.Title,
		Description:       req.Description,
		VideoURL:          req.VideoURL,
		DurationSeconds:   req.DurationSeconds,
		SequenceNumber:    req.SequenceNumber,
		PassingPercentage: req.PassingPercentage,
		TimeLimitMinutes:  req.TimeLimitMinutes,
		IsActive:          false,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create video: %w", err)
	}
	return video, nil
}

// Update applies the non-nil fields of the request. Activating a video
// requires it to have at least one question, otherwise its quiz would
// finalize at 0% for everyone.
func (s *VideoService) Update(ctx context.Context, id int, req *model.UpdateVideoRequest) (*model.Video, error) {
	video, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		video.Title = req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.VideoURL != nil {
		video.VideoURL = *req.VideoURL
	}
	if req.DurationSeconds != nil {
		video.DurationSeconds = *req.DurationSeconds
	}
	if req.SequenceNumber != nil {
		video.SequenceNumber = *req.SequenceNumber
	}
	if req.PassingPercentage != nil {
		video.PassingPercentage = *req.PassingPercentage
	}
	if req.TimeLimitMinutes != nil {
		video.TimeLimitMinutes = *req.TimeLimitMinutes
	}
	if req.IsActive != nil {
		if *req.IsActive && !video.IsActive {
			count, err := s.questionRepo.CountByVideo(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("count questions: %w", err)
			}
			if count == 0 {
				return nil, ErrInvalidState
			}
		}
		video.IsActive = *req.IsActive
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("update video: %w", err)
	}
	return video, nil
}

// Delete removes a video with its questions and attempts. Learner summaries
// referencing it heal on their next reconciliation.
func (s *VideoService) Delete(ctx context.Context, id int) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.videoRepo.Delete(ctx, id)
}
