package pg

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/testimonio/api/domain"
)

type ProjectPostgresRepository struct {
	pool *pgxpool.Pool
}

func CreateProjectTable() string {
	return `CREATE TABLE IF NOT EXISTS projects
(
	id SERIAL NOT NULL PRIMARY KEY,
	uid INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name VARCHAR(200) NOT NULL,
	slug VARCHAR(200) NOT NULL UNIQUE CHECK (slug ~ '^[a-z0-9-]+$'),
	website VARCHAR(300),
	create_time TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`
}

func (pr *ProjectPostgresRepository) GetByIDForUser(ctx context.Context, id int, uid int) (*domain.Project, error) {
	row := pr.pool.QueryRow(
		ctx,
		"SELECT id, uid, name, slug, website, create_time FROM projects WHERE id = $1 AND uid = $2",
		id,
		uid,
	)
	project := domain.Project{}
	if err := row.Scan(&project.ID, &project.UserID, &project.Name, &project.Slug, &project.Website, &project.CreateTime); err != nil {
		return nil, err
	}
	return &project, nil
}

func (pr *ProjectPostgresRepository) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	row := pr.pool.QueryRow(ctx, "SELECT id, uid, name, slug, website, create_time FROM projects WHERE slug = $1", slug)
	project := domain.Project{}
	if err := row.Scan(&project.ID, &project.UserID, &project.Name, &project.Slug, &project.Website, &project.CreateTime); err != nil {
		return nil, err
	}
	return &project, nil
}

func (pr *ProjectPostgresRepository) GetBySlugWithOwner(ctx context.Context, slug string) (*domain.Project, string, error) {
	row := pr.pool.QueryRow(
		ctx,
		`SELECT p.id, p.uid, p.name, p.slug, p.website, p.create_time, u.plan,
			(SELECT COUNT(*) FROM testimonials t WHERE t.pid = p.id)
		FROM projects p JOIN users u ON u.id = p.uid
		WHERE p.slug = $1`,
		slug,
	)
	project := domain.Project{}
	var plan string
	if err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Slug,
		&project.Website,
		&project.CreateTime,
		&plan,
		&project.TestimonialCount,
	); err != nil {
		return nil, "", err
	}
	return &project, plan, nil
}

func (pr *ProjectPostgresRepository) GetProjectsByUserID(ctx context.Context, uid int) ([]domain.Project, error) {
	rows, err := pr.pool.Query(
		ctx,
		`SELECT p.id, p.uid, p.name, p.slug, p.website, p.create_time,
			(SELECT COUNT(*) FROM testimonials t WHERE t.pid = p.id)
		FROM projects p WHERE p.uid = $1 ORDER BY p.create_time DESC`,
		uid,
	)
	if err != nil {
		return nil, err
	}
	ret := make([]domain.Project, 0)
	for rows.Next() {
		project := domain.Project{}
		err := rows.Scan(
			&project.ID,
			&project.UserID,
			&project.Name,
			&project.Slug,
			&project.Website,
			&project.CreateTime,
			&project.TestimonialCount,
		)
		if err != nil {
			return nil, err
		}
		ret = append(ret, project)
	}
	return ret, nil
}

func (pr *ProjectPostgresRepository) CountByUserID(ctx context.Context, uid int) (int, error) {
	var count int
	row := pr.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects WHERE uid = $1", uid)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (pr *ProjectPostgresRepository) Insert(ctx context.Context, project *domain.Project) error {
	row := pr.pool.QueryRow(
		ctx,
		"INSERT INTO projects (uid, name, slug, website) VALUES ($1, $2, $3, $4) RETURNING id, create_time",
		project.UserID,
		project.Name,
		project.Slug,
		project.Website,
	)
	return row.Scan(&project.ID, &project.CreateTime)
}

func (pr *ProjectPostgresRepository) Delete(ctx context.Context, project *domain.Project) error {
	result, err := pr.pool.Exec(ctx, "DELETE FROM projects WHERE id = $1 AND uid = $2", project.ID, project.UserID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func NewProjectPostgresRepository(pool *pgxpool.Pool) *ProjectPostgresRepository {
	return &ProjectPostgresRepository{
		pool: pool,
	}
}
