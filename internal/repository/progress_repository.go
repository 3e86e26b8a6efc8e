package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kursio/kursio-backend/internal/model"
)

// ProgressRepository persists the derived progress summary. The summary is a
// cache over the attempt ledger; every write here is a full replacement of
// the previous state, never an in-place tweak.
type ProgressRepository struct {
	db DB
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ProgressRepository) WithTx(tx pgx.Tx) *ProgressRepository {
	return &ProgressRepository{db: tx}
}

// Get retrieves a learner's summary with both video sets. Returns
// pgx.ErrNoRows if the summary has never been materialized.
func (r *ProgressRepository) Get(ctx context.Context, userID int) (*model.ProgressSummary, error) {
	p := &model.ProgressSummary{UserID: userID}
	err := r.db.QueryRow(ctx,
		`SELECT total_retries, overall_progress, last_updated
		 FROM user_progress WHERE user_id = $1`, userID,
	).Scan(&p.TotalRetries, &p.OverallProgress, &p.LastUpdated)
	if err != nil {
		return nil, err
	}

	p.VideosPassed, err = r.videoSet(ctx, `progress_videos_passed`, userID)
	if err != nil {
		return nil, err
	}
	p.VideosFailed, err = r.videoSet(ctx, `progress_videos_failed`, userID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProgressRepository) videoSet(ctx context.Context, table string, userID int) ([]int, error) {
	// table is one of two compile-time constants, never user input.
	rows, err := r.db.Query(ctx,
		`SELECT video_id FROM `+table+` WHERE user_id = $1 ORDER BY video_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Replace persists a replay snapshot as the learner's summary: upsert the
// aggregate row, then rewrite both video sets wholesale. Applying the same
// snapshot twice leaves identical state.
func (r *ProgressRepository) Replace(ctx context.Context, userID int, snap model.ProgressSnapshot) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_progress (user_id, total_retries, overall_progress, last_updated)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id)
		 DO UPDATE SET total_retries = EXCLUDED.total_retries,
		               overall_progress = EXCLUDED.overall_progress,
		               last_updated = NOW()`,
		userID, snap.TotalRetries, snap.OverallProgress)
	if err != nil {
		return err
	}

	if err := r.replaceSet(ctx, `progress_videos_passed`, userID, snap.VideosPassed); err != nil {
		return err
	}
	return r.replaceSet(ctx, `progress_videos_failed`, userID, snap.VideosFailed)
}

func (r *ProgressRepository) replaceSet(ctx context.Context, table string, userID int, videoIDs []int) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if len(videoIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO `+table+` (user_id, video_id)
		 SELECT $1, v FROM UNNEST($2::int[]) AS v`,
		userID, videoIDs)
	return err
}

// Reset zeroes a learner's summary and clears both video sets.
func (r *ProgressRepository) Reset(ctx context.Context, userID int) error {
	return r.Replace(ctx, userID, model.ProgressSnapshot{})
}

// ListUserIDs returns every user ID, for bulk recalculation.
func (r *ProgressRepository) ListUserIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users ORDER BY id`)
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

// ProgressReportRow is one line of the admin progress export.
type ProgressReportRow struct {
	UserID          int
	Username        string
	FullName        string
	Email           string
	PassedCount     int
	FailedCount     int
	TotalRetries    int
	OverallProgress float64
	HasCertificate  bool
}

// ListReport joins users, summaries and certificates for the admin export.
// Users without a materialized summary appear with zeroes.
func (r *ProgressRepository) ListReport(ctx context.Context) ([]ProgressReportRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.username, TRIM(u.first_name || ' ' || u.last_name), u.email,
		        (SELECT COUNT(*) FROM progress_videos_passed pv WHERE pv.user_id = u.id),
		        (SELECT COUNT(*) FROM progress_videos_failed fv WHERE fv.user_id = u.id),
		        COALESCE(up.total_retries, 0),
		        COALESCE(up.overall_progress, 0),
		        EXISTS (SELECT 1 FROM certificates c WHERE c.user_id = u.id)
		 FROM users u
		 LEFT JOIN user_progress up ON up.user_id = u.id
		 ORDER BY u.username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []ProgressReportRow
	for rows.Next() {
		var row ProgressReportRow
		if err := rows.Scan(&row.UserID, &row.Username, &row.FullName, &row.Email,
			&row.PassedCount, &row.FailedCount, &row.TotalRetries,
			&row.OverallProgress, &row.HasCertificate); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
