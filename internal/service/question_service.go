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

// ErrNoCorrectAnswer rejects questions that could never be answered right.
var ErrNoCorrectAnswer = errors.New("question must have exactly one correct answer")

// QuestionService handles quiz question administration.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	videoRepo    *repository.VideoRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, videoRepo *repository.VideoRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, videoRepo: videoRepo}
}

// ListByVideo returns a video's questions with answers (admin view, includes
// correctness flags).
func (s *QuestionService) ListByVideo(ctx context.Context, videoID int) ([]model.Question, error) {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	return s.questionRepo.ListByVideo(ctx, videoID)
}

// ListForLearner returns a video's questions with correctness stripped.
func (s *QuestionService) ListForLearner(ctx context.Context, videoID int) ([]model.QuestionForLearner, error) {
	questions, err := s.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	out := make([]model.QuestionForLearner, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ForLearner())
	}
	return out, nil
}

// Create adds a question with its choices to a video. Exactly one choice must
// be marked correct.
func (s *QuestionService) Create(ctx context.Context, videoID int, req *model.CreateQuestionRequest) (*model.Question, error) {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get video: %w", err)
	}

	correct := 0
	for _, a := range req.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return nil, ErrNoCorrectAnswer
	}

	question := &model.Question{
		VideoID:        videoID,
		QuestionText:   req.QuestionText,
		SequenceNumber: req.SequenceNumber,
		Answers:        make([]model.Answer, 0, len(req.Answers)),
	}
	for i, a := range req.Answers {
		seq := a.SequenceNumber
		if seq == 0 {
			seq = i + 1
		}
		question.Answers = append(question.Answers, model.Answer{
			AnswerText:     a.AnswerText,
			IsCorrect:      a.IsCorrect,
			SequenceNumber: seq,
		})
	}

	if err := s.questionRepo.CreateWithAnswers(ctx, question); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create question: %w", err)
	}
	return question, nil
}

// Delete removes a question and its choices. Existing answer records for it
// cascade; finalized scores are historical and stay as written.
func (s *QuestionService) Delete(ctx context.Context, id int) error {
	if _, err := s.questionRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get question: %w", err)
	}
	return s.questionRepo.Delete(ctx, id)
}
