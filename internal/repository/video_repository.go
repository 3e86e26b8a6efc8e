package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kursio/kursio-backend/internal/model"
)

// VideoRepository handles video metadata data access.
type VideoRepository struct {
	db DB
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *VideoRepository) WithTx(tx pgx.Tx) *VideoRepository {
	return &VideoRepository{db: tx}
}

const videoColumns = `id, title, description, video_url, duration_seconds, sequence_number,
	passing_percentage, time_limit_minutes, is_active, created_at, updated_at`

func scanVideo(row interface{ Scan(dest ...any) error }, v *model.Video) error {
	return row.Scan(&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.DurationSeconds,
		&v.SequenceNumber, &v.PassingPercentage, &v.TimeLimitMinutes, &v.IsActive,
		&v.CreatedAt, &v.UpdatedAt)
}

// GetByID retrieves a video by ID.
func (r *VideoRepository) GetByID(ctx context.Context, id int) (*model.Video, error) {
	v := &model.Video{}
	row := r.db.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	if err := scanVideo(row, v); err != nil {
		return nil, err
	}
	return v, nil
}

// List retrieves all videos in sequence order.
func (r *VideoRepository) List(ctx context.Context) ([]model.Video, error) {
	return r.list(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY sequence_number`)
}

// ListActive retrieves active videos in sequence order. The unlock gate and
// the progress replay both operate on this set.
func (r *VideoRepository) ListActive(ctx context.Context) ([]model.Video, error) {
	return r.list(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE is_active ORDER BY sequence_number`)
}

func (r *VideoRepository) list(ctx context.Context, query string) ([]model.Video, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		var v model.Video
		if err := scanVideo(rows, &v); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Create inserts a new video.
func (r *VideoRepository) Create(ctx context.Context, v *model.Video) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO videos (title, description, video_url, duration_seconds, sequence_number,
		                     passing_percentage, time_limit_minutes, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		v.Title, v.Description, v.VideoURL, v.DurationSeconds, v.SequenceNumber,
		v.PassingPercentage, v.TimeLimitMinutes, v.IsActive,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// Update modifies an existing video.
func (r *VideoRepository) Update(ctx context.Context, v *model.Video) error {
	_, err := r.db.Exec(ctx,
		`UPDATE videos
		 SET title = $1, description = $2, video_url = $3, duration_seconds = $4,
		     sequence_number = $5, passing_percentage = $6, time_limit_minutes = $7,
		     is_active = $8, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $9`,
		v.Title, v.Description, v.VideoURL, v.DurationSeconds, v.SequenceNumber,
		v.PassingPercentage, v.TimeLimitMinutes, v.IsActive, v.ID)
	return err
}

// Delete removes a video. Questions, answers and attempts cascade.
func (r *VideoRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	return err
}
