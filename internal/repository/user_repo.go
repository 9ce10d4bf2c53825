package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legal-companion/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateEmail(ctx context.Context, id, email string, verified bool) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q UserQuery) ([]domain.User, error)
	Count(ctx context.Context, q UserQuery) (int64, error)
}

// UserQuery filtra listados y conteos de usuarios. Los campos vacios no filtran.
type UserQuery struct {
	UsernameContains string
	CreatedSince     time.Time
	AdminsOnly       bool
	Skip             int64
	Limit            int64
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const pgUserColumns = `id::text, username, email, password_hash, is_verified, is_admin, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
		INSERT INTO users (username, email, password_hash, is_verified, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text
	`
	err := r.pool.QueryRow(ctx, query,
		user.Username,
		nullIfEmpty(user.Email),
		user.PasswordHash,
		user.IsVerified,
		user.IsAdmin,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return domain.User{}, mapPgErr(err)
	}
	return user, nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	id, err := parseUUID(id)
	if err != nil {
		return domain.User{}, err
	}
	return r.getOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE username = $1`, username)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE email = $1`, email)
}

func (r *PgUserRepository) getOne(ctx context.Context, query string, arg any) (domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return domain.User{}, mapPgErr(err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u     domain.User
		email *string
	)
	err := row.Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.IsVerified, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return domain.User{}, err
	}
	if email != nil {
		u.Email = *email
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (r *PgUserRepository) UpdateEmail(ctx context.Context, id, email string, verified bool) error {
	return r.exec(ctx, `UPDATE users SET email = $2, is_verified = $3 WHERE id = $1`, id, email, verified)
}

func (r *PgUserRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	return r.exec(ctx, `UPDATE users SET is_admin = $2 WHERE id = $1`, id, isAdmin)
}

func (r *PgUserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) exec(ctx context.Context, query, id string, args ...any) error {
	id, err := parseUUID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) List(ctx context.Context, q UserQuery) ([]domain.User, error) {
	w := pgUserWhere(q)
	query := `SELECT ` + pgUserColumns + ` FROM users` + w.String() + ` ORDER BY created_at DESC`
	if q.Limit > 0 {
		w.args = append(w.args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(w.args))
	}
	if q.Skip > 0 {
		w.args = append(w.args, q.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(w.args))
	}

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) Count(ctx context.Context, q UserQuery) (int64, error) {
	w := pgUserWhere(q)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`+w.String(), w.args...).Scan(&n)
	return n, mapPgErr(err)
}

func pgUserWhere(q UserQuery) *whereBuilder {
	w := &whereBuilder{}
	if q.UsernameContains != "" {
		w.add(`username ILIKE '%%' || $%d || '%%'`, likeEscape(q.UsernameContains))
	}
	if !q.CreatedSince.IsZero() {
		w.add("created_at >= $%d", q.CreatedSince)
	}
	if q.AdminsOnly {
		w.addRaw("is_admin")
	}
	return w
}
