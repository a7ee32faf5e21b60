package pg

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/testimonio/api/domain"
)

type UserPostgresRepository struct {
	pool *pgxpool.Pool
}

func CreateUserTable() string {
	return `CREATE TABLE IF NOT EXISTS users
(
	id SERIAL NOT NULL PRIMARY KEY,
	visitor_id VARCHAR(100) NOT NULL UNIQUE,
	email VARCHAR(200) NOT NULL CHECK (email ~ '^[A-Za-z0-9._%-]+@[A-Za-z0-9.-]+[.][A-Za-z]+$'),
	name VARCHAR(200),
	plan VARCHAR(10) NOT NULL DEFAULT 'free' CHECK (plan IN ('free', 'pro')),
	create_time TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`
}

func (u *UserPostgresRepository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	row := u.pool.QueryRow(ctx, "SELECT id, visitor_id, email, name, plan, create_time FROM users WHERE id = $1", id)
	user := domain.User{}
	if err := row.Scan(&user.ID, &user.VisitorID, &user.Email, &user.Name, &user.Plan, &user.CreateTime); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgresRepository) GetByVisitorID(ctx context.Context, visitorID string) (*domain.User, error) {
	row := u.pool.QueryRow(ctx, "SELECT id, visitor_id, email, name, plan, create_time FROM users WHERE visitor_id = $1", visitorID)
	user := domain.User{}
	if err := row.Scan(&user.ID, &user.VisitorID, &user.Email, &user.Name, &user.Plan, &user.CreateTime); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgresRepository) GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := u.pool.QueryRow(
		ctx,
		`INSERT INTO users (visitor_id, email, name) VALUES ($1, $2, $3)
		ON CONFLICT (visitor_id) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, visitor_id, email, name, plan, create_time`,
		user.VisitorID,
		user.Email,
		user.Name,
	)
	stored := domain.User{}
	if err := row.Scan(&stored.ID, &stored.VisitorID, &stored.Email, &stored.Name, &stored.Plan, &stored.CreateTime); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (u *UserPostgresRepository) Update(ctx context.Context, user *domain.User) error {
	_, err := u.pool.Exec(ctx, "UPDATE users SET email = $1, name = $2, plan = $3 WHERE id = $4", user.Email, user.Name, user.Plan, user.ID)
	return err
}

func NewUserPostgresRepository(pool *pgxpool.Pool) *UserPostgresRepository {
	return &UserPostgresRepository{
		pool: pool,
	}
}
