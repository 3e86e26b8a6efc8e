package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kursio/kursio-backend/internal/model"
)

// CertificateRepository handles completion certificate data access.
type CertificateRepository struct {
	db DB
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{db: pool}
}

const certificateColumns = `id, user_id, unique_id, issue_date, is_downloaded`

// GetByID retrieves a certificate by ID.
func (r *CertificateRepository) GetByID(ctx context.Context, id int) (*model.Certificate, error) {
	c := &model.Certificate{}
	err := r.db.QueryRow(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE id = $1`, id,
	).Scan(&c.ID, &c.UserID, &c.UniqueID, &c.IssueDate, &c.IsDownloaded)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByUser retrieves a learner's certificate, if issued.
func (r *CertificateRepository) GetByUser(ctx context.Context, userID int) (*model.Certificate, error) {
	c := &model.Certificate{}
	err := r.db.QueryRow(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.UniqueID, &c.IssueDate, &c.IsDownloaded)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a certificate. The UNIQUE(user_id) constraint is the
// issuance race guard: the second of two concurrent inserts fails with
// a 23505, which callers map to an already-exists error.
func (r *CertificateRepository) Create(ctx context.Context, c *model.Certificate) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO certificates (user_id, unique_id)
		 VALUES ($1, $2)
		 RETURNING id, issue_date`,
		c.UserID, c.UniqueID,
	).Scan(&c.ID, &c.IssueDate)
}

// MarkDownloaded flips the download flag. The only mutation certificates allow.
func (r *CertificateRepository) MarkDownloaded(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE certificates SET is_downloaded = TRUE WHERE id = $1`, id)
	return err
}

// List retrieves all certificates, newest first (admin view).
func (r *CertificateRepository) List(ctx context.Context) ([]model.Certificate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+certificateColumns+` FROM certificates ORDER BY issue_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []model.Certificate
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ID, &c.UserID, &c.UniqueID, &c.IssueDate, &c.IsDownloaded); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}
