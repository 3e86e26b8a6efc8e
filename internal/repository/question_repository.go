package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kursio/kursio-backend/internal/model"
)

// QuestionRepository handles questions and their answer choices.
type QuestionRepository struct {
	pool *pgxpool.Pool
	db   DB
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool, db: pool}
}

// GetByID retrieves a question without its answers.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	q := &model.Question{}
	err := r.db.QueryRow(ctx,
		`SELECT id, video_id, question_text, sequence_number, created_at, updated_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.VideoID, &q.QuestionText, &q.SequenceNumber, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetAnswer retrieves one answer choice.
func (r *QuestionRepository) GetAnswer(ctx context.Context, id int) (*model.Answer, error) {
	a := &model.Answer{}
	err := r.db.QueryRow(ctx,
		`SELECT id, question_id, answer_text, is_correct, sequence_number
		 FROM answers WHERE id = $1`, id,
	).Scan(&a.ID, &a.QuestionID, &a.AnswerText, &a.IsCorrect, &a.SequenceNumber)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByVideo retrieves a video's questions with answers, both in sequence order.
func (r *QuestionRepository) ListByVideo(ctx context.Context, videoID int) ([]model.Question, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, video_id, question_text, sequence_number, created_at, updated_at
		 FROM questions WHERE video_id = $1 ORDER BY sequence_number`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	index := make(map[int]int) // question id → slice position
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.VideoID, &q.QuestionText, &q.SequenceNumber,
			&q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, nil
	}

	answerRows, err := r.db.Query(ctx,
		`SELECT a.id, a.question_id, a.answer_text, a.is_correct, a.sequence_number
		 FROM answers a
		 JOIN questions q ON a.question_id = q.id
		 WHERE q.video_id = $1
		 ORDER BY a.question_id, a.sequence_number`, videoID)
	if err != nil {
		return nil, err
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var a model.Answer
		if err := answerRows.Scan(&a.ID, &a.QuestionID, &a.AnswerText, &a.IsCorrect,
			&a.SequenceNumber); err != nil {
			return nil, err
		}
		if pos, ok := index[a.QuestionID]; ok {
			questions[pos].Answers = append(questions[pos].Answers, a)
		}
	}
	return questions, answerRows.Err()
}

// ListIDsByVideo returns a video's question IDs in sequence order.
func (r *QuestionRepository) ListIDsByVideo(ctx context.Context, videoID int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM questions WHERE video_id = $1 ORDER BY sequence_number`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByVideo returns how many questions a video's quiz has.
func (r *QuestionRepository) CountByVideo(ctx context.Context, videoID int) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE video_id = $1`, videoID).Scan(&n)
	return n, err
}

// CreateWithAnswers inserts a question and its choices in one transaction.
func (r *QuestionRepository) CreateWithAnswers(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (video_id, question_text, sequence_number)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		q.VideoID, q.QuestionText, q.SequenceNumber,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i := range q.Answers {
		q.Answers[i].QuestionID = q.ID
		batch.Queue(
			`INSERT INTO answers (question_id, answer_text, is_correct, sequence_number)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			q.ID, q.Answers[i].AnswerText, q.Answers[i].IsCorrect, q.Answers[i].SequenceNumber)
	}
	results := tx.SendBatch(ctx, batch)
	for i := range q.Answers {
		if err := results.QueryRow().Scan(&q.Answers[i].ID); err != nil {
			results.Close()
			return err
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete removes a question. Its answers and answer records cascade.
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}
