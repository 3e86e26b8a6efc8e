package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kursio/kursio-backend/internal/model"
)

// AttemptRepository is the attempt ledger: every quiz run and its per-question
// answer records. History is append-only in the normal flow; deletion exists
// only as a privileged administrative operation.
type AttemptRepository struct {
	db DB
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AttemptRepository) WithTx(tx pgx.Tx) *AttemptRepository {
	return &AttemptRepository{db: tx}
}

const attemptColumns = `id, user_id, video_id, attempt_number, status, start_time,
	end_time, time_remaining, score, percentage, is_passed`

func scanAttempt(row interface{ Scan(dest ...any) error }, a *model.QuizAttempt) error {
	return row.Scan(&a.ID, &a.UserID, &a.VideoID, &a.AttemptNumber, &a.Status,
		&a.StartTime, &a.EndTime, &a.TimeRemaining, &a.Score, &a.Percentage, &a.IsPassed)
}

// GetByID retrieves an attempt by ID.
func (r *AttemptRepository) GetByID(ctx context.Context, id int) (*model.QuizAttempt, error) {
	a := &model.QuizAttempt{}
	row := r.db.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = $1`, id)
	if err := scanAttempt(row, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetInProgress retrieves the learner's open attempt for a video, if any.
func (r *AttemptRepository) GetInProgress(ctx context.Context, userID, videoID int) (*model.QuizAttempt, error) {
	a := &model.QuizAttempt{}
	row := r.db.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts
		 WHERE user_id = $1 AND video_id = $2 AND status = $3`,
		userID, videoID, model.AttemptStatusInProgress)
	if err := scanAttempt(row, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByUserVideo retrieves a learner's attempts for one video, ordered by
// attempt_number ascending.
func (r *AttemptRepository) ListByUserVideo(ctx context.Context, userID, videoID int) ([]model.QuizAttempt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts
		 WHERE user_id = $1 AND video_id = $2
		 ORDER BY attempt_number`, userID, videoID)
	if err != nil {
		return nil, err
	}
	return collectAttempts(rows)
}

// ListTerminalByUser retrieves every finalized (completed or timed_out)
// attempt a learner has, across all videos. This is the full-replay input.
func (r *AttemptRepository) ListTerminalByUser(ctx context.Context, userID int) ([]model.QuizAttempt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts
		 WHERE user_id = $1 AND status IN ($2, $3)
		 ORDER BY video_id, attempt_number`,
		userID, model.AttemptStatusCompleted, model.AttemptStatusTimedOut)
	if err != nil {
		return nil, err
	}
	return collectAttempts(rows)
}

// ListPassedVideoIDs returns the IDs of videos the learner has a passing
// attempt for. The unlock gate reads this.
func (r *AttemptRepository) ListPassedVideoIDs(ctx context.Context, userID int) (map[int]bool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT video_id FROM quiz_attempts
		 WHERE user_id = $1 AND is_passed = TRUE`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passed := make(map[int]bool)
	for rows.Next() {
		var videoID int
		if err := rows.Scan(&videoID); err != nil {
			return nil, err
		}
		passed[videoID] = true
	}
	return passed, rows.Err()
}

func collectAttempts(rows pgx.Rows) ([]model.QuizAttempt, error) {
	defer rows.Close()
	var attempts []model.QuizAttempt
	for rows.Next() {
		var a model.QuizAttempt
		if err := scanAttempt(rows, &a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Create inserts a new in-progress attempt. The unique constraint on
// (user_id, video_id, attempt_number) and the partial unique index on open
// attempts reject concurrent double-starts; callers map 23505 accordingly.
func (r *AttemptRepository) Create(ctx context.Context, a *model.QuizAttempt) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO quiz_attempts (user_id, video_id, attempt_number, status, time_remaining)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, start_time`,
		a.UserID, a.VideoID, a.AttemptNumber, model.AttemptStatusInProgress, a.TimeRemaining,
	).Scan(&a.ID, &a.StartTime)
}

// UpdateTimeRemaining persists a client-reported timer value.
func (r *AttemptRepository) UpdateTimeRemaining(ctx context.Context, attemptID, seconds int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE quiz_attempts SET time_remaining = $1 WHERE id = $2`, seconds, attemptID)
	return err
}

// Finalize writes the terminal state of an attempt. Guarded on the current
// status so a terminal attempt can never transition again.
func (r *AttemptRepository) Finalize(ctx context.Context, a *model.QuizAttempt, endTime time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE quiz_attempts
		 SET status = $1, end_time = $2, time_remaining = $3,
		     score = $4, percentage = $5, is_passed = $6
		 WHERE id = $7 AND status = $8`,
		a.Status, endTime, a.TimeRemaining, a.Score, a.Percentage, a.IsPassed,
		a.ID, model.AttemptStatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes one attempt and its answer records (cascade).
// Administrative only; the caller must re-run progress reconciliation.
func (r *AttemptRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quiz_attempts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteByUser wipes a learner's entire attempt history. Only resetProgress
// calls this; it is destructive and irreversible.
func (r *AttemptRepository) DeleteByUser(ctx context.Context, userID int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quiz_attempts WHERE user_id = $1`, userID)
	return err
}

// ────────────────────────────────────────────────────────────────────────────
// Answer records
// ────────────────────────────────────────────────────────────────────────────

// CreateEmptyAnswers pre-materializes one blank answer record per question.
// "How many answered" is then a NULL-count instead of a join.
func (r *AttemptRepository) CreateEmptyAnswers(ctx context.Context, attemptID int, questionIDs []int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_answers (attempt_id, question_id)
		 SELECT $1, q FROM UNNEST($2::int[]) AS q`,
		attemptID, questionIDs)
	return err
}

// UpsertAnswer records a selection for one question. Resubmission overwrites
// the previous choice: last write wins.
func (r *AttemptRepository) UpsertAnswer(ctx context.Context, attemptID, questionID, answerID int, isCorrect bool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_answers (attempt_id, question_id, selected_answer_id, is_correct)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (attempt_id, question_id)
		 DO UPDATE SET selected_answer_id = EXCLUDED.selected_answer_id,
		               is_correct = EXCLUDED.is_correct`,
		attemptID, questionID, answerID, isCorrect)
	return err
}

// ListAnswers retrieves an attempt's answer records in question order.
func (r *AttemptRepository) ListAnswers(ctx context.Context, attemptID int) ([]model.UserAnswer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ua.id, ua.attempt_id, ua.question_id, ua.selected_answer_id, ua.is_correct
		 FROM user_answers ua
		 JOIN questions q ON ua.question_id = q.id
		 WHERE ua.attempt_id = $1
		 ORDER BY q.sequence_number`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.UserAnswer
	for rows.Next() {
		var ua model.UserAnswer
		if err := rows.Scan(&ua.ID, &ua.AttemptID, &ua.QuestionID,
			&ua.SelectedAnswerID, &ua.IsCorrect); err != nil {
			return nil, err
		}
		answers = append(answers, ua)
	}
	return answers, rows.Err()
}
