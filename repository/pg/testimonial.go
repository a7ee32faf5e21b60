package pg

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/testimonio/api/domain"
)

type TestimonialPostgresRepository struct {
	pool *pgxpool.Pool
}

func CreateTestimonialTable() string {
	return `CREATE TABLE IF NOT EXISTS testimonials
(
	id SERIAL NOT NULL PRIMARY KEY,
	pid INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name VARCHAR(200) NOT NULL,
	email VARCHAR(200),
	company VARCHAR(200),
	role VARCHAR(200),
	content TEXT NOT NULL,
	rating INTEGER NOT NULL DEFAULT 5,
	status VARCHAR(10) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
	is_featured BOOLEAN NOT NULL DEFAULT FALSE,
	avatar_url VARCHAR(300),
	create_time TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`
}

func (t *TestimonialPostgresRepository) GetByIDForUser(ctx context.Context, id int, uid int) (*domain.Testimonial, string, error) {
	row := t.pool.QueryRow(
		ctx,
		`SELECT t.id, t.pid, t.name, t.email, t.company, t.role, t.content, t.rating, t.status, t.is_featured, t.avatar_url, t.create_time, p.slug
		FROM testimonials t JOIN projects p ON p.id = t.pid
		WHERE t.id = $1 AND p.uid = $2`,
		id,
		uid,
	)
	testimonial := &domain.Testimonial{}
	var slug string
	if err := row.Scan(
		&testimonial.ID,
		&testimonial.ProjectID,
		&testimonial.Name,
		&testimonial.Email,
		&testimonial.Company,
		&testimonial.Role,
		&testimonial.Content,
		&testimonial.Rating,
		&testimonial.Status,
		&testimonial.IsFeatured,
		&testimonial.AvatarURL,
		&testimonial.CreateTime,
		&slug,
	); err != nil {
		return nil, "", err
	}
	return testimonial, slug, nil
}

func (t *TestimonialPostgresRepository) GetByProjectID(ctx context.Context, pid int) ([]domain.Testimonial, error) {
	rows, err := t.pool.Query(
		ctx,
		`SELECT id, pid, name, email, company, role, content, rating, status, is_featured, avatar_url, create_time
		FROM testimonials WHERE pid = $1 ORDER BY create_time DESC`,
		pid,
	)
	if err != nil {
		return nil, err
	}
	ret := make([]domain.Testimonial, 0)
	for rows.Next() {
		testimonial := domain.Testimonial{}
		err := rows.Scan(
			&testimonial.ID,
			&testimonial.ProjectID,
			&testimonial.Name,
			&testimonial.Email,
			&testimonial.Company,
			&testimonial.Role,
			&testimonial.Content,
			&testimonial.Rating,
			&testimonial.Status,
			&testimonial.IsFeatured,
			&testimonial.AvatarURL,
			&testimonial.CreateTime,
		)
		if err != nil {
			return nil, err
		}
		ret = append(ret, testimonial)
	}
	return ret, nil
}

func (t *TestimonialPostgresRepository) GetApprovedByProjectID(ctx context.Context, pid int) ([]domain.FeedItem, error) {
	rows, err := t.pool.Query(
		ctx,
		`SELECT id, name, company, role, content, rating, avatar_url, is_featured, create_time
		FROM testimonials WHERE pid = $1 AND status = 'approved'
		ORDER BY is_featured DESC, create_time DESC`,
		pid,
	)
	if err != nil {
		return nil, err
	}
	ret := make([]domain.FeedItem, 0)
	for rows.Next() {
		item := domain.FeedItem{}
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Company,
			&item.Role,
			&item.Content,
			&item.Rating,
			&item.AvatarURL,
			&item.IsFeatured,
			&item.CreateTime,
		)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}

func (t *TestimonialPostgresRepository) CountByProjectID(ctx context.Context, pid int) (int, error) {
	var count int
	row := t.pool.QueryRow(ctx, "SELECT COUNT(*) FROM testimonials WHERE pid = $1", pid)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (t *TestimonialPostgresRepository) Insert(ctx context.Context, testimonial *domain.Testimonial) error {
	row := t.pool.QueryRow(
		ctx,
		`INSERT INTO testimonials (pid, name, email, company, role, content, rating, status, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, status, is_featured, create_time`,
		testimonial.ProjectID,
		testimonial.Name,
		testimonial.Email,
		testimonial.Company,
		testimonial.Role,
		testimonial.Content,
		testimonial.Rating,
		domain.TESTIMONIAL_STATUS_PENDING,
		testimonial.AvatarURL,
	)
	return row.Scan(&testimonial.ID, &testimonial.Status, &testimonial.IsFeatured, &testimonial.CreateTime)
}

func (t *TestimonialPostgresRepository) UpdateStatus(ctx context.Context, testimonial *domain.Testimonial, status string) error {
	result, err := t.pool.Exec(ctx, "UPDATE testimonials SET status = $1 WHERE id = $2", status, testimonial.ID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	testimonial.Status = status
	return nil
}

func (t *TestimonialPostgresRepository) SetFeatured(ctx context.Context, testimonial *domain.Testimonial, featured bool) error {
	result, err := t.pool.Exec(ctx, "UPDATE testimonials SET is_featured = $1 WHERE id = $2", featured, testimonial.ID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	testimonial.IsFeatured = featured
	return nil
}

func (t *TestimonialPostgresRepository) Delete(ctx context.Context, testimonial *domain.Testimonial) error {
	_, err := t.pool.Exec(ctx, "DELETE FROM testimonials WHERE id = $1", testimonial.ID)
	return err
}

func NewTestimonialPostgresRepository(pool *pgxpool.Pool) *TestimonialPostgresRepository {
	return &TestimonialPostgresRepository{
		pool: pool,
	}
}
