package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"legal-companion/internal/domain"
)

// OTPRepository persiste codigos de un solo uso.
type OTPRepository interface {
	Create(ctx context.Context, otp domain.OTP) (domain.OTP, error)
	// FindUnused busca un registro con ese email y codigo que no se haya usado.
	FindUnused(ctx context.Context, email, code string) (domain.OTP, error)
	// MarkUsed marca el registro como usado solo si seguia sin usar.
	MarkUsed(ctx context.Context, id string) error
	CountCreatedSince(ctx context.Context, email string, since time.Time) (int64, error)
	HasPending(ctx context.Context, email string, now time.Time) (bool, error)
	DeleteUnused(ctx context.Context, email string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}

// PgOTPRepository implementa OTPRepository usando pgxpool.
type PgOTPRepository struct {
	pool *pgxpool.Pool
}

func NewPgOTPRepository(pool *pgxpool.Pool) *PgOTPRepository {
	return &PgOTPRepository{pool: pool}
}

func (r *PgOTPRepository) Create(ctx context.Context, otp domain.OTP) (domain.OTP, error) {
	const query = `
		INSERT INTO otps (email, otp_code, is_used, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text
	`
	err := r.pool.QueryRow(ctx, query, otp.Email, otp.Code, otp.IsUsed, otp.ExpiresAt, otp.CreatedAt).Scan(&otp.ID)
	if err != nil {
		return domain.OTP{}, mapPgErr(err)
	}
	return otp, nil
}

func (r *PgOTPRepository) FindUnused(ctx context.Context, email, code string) (domain.OTP, error) {
	const query = `
		SELECT id::text, email, otp_code, is_used, expires_at, created_at
		FROM otps
		WHERE email = $1 AND otp_code = $2 AND NOT is_used
		ORDER BY created_at DESC
		LIMIT 1
	`
	var o domain.OTP
	err := r.pool.QueryRow(ctx, query, email, code).Scan(&o.ID, &o.Email, &o.Code, &o.IsUsed, &o.ExpiresAt, &o.CreatedAt)
	if err != nil {
		return domain.OTP{}, mapPgErr(err)
	}
	o.ExpiresAt = o.ExpiresAt.UTC()
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}

func (r *PgOTPRepository) MarkUsed(ctx context.Context, id string) error {
	id, err := parseUUID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE otps SET is_used = TRUE WHERE id = $1 AND NOT is_used`, id)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgOTPRepository) CountCreatedSince(ctx context.Context, email string, since time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM otps WHERE email = $1 AND created_at >= $2`, email, since).Scan(&n)
	return n, mapPgErr(err)
}

func (r *PgOTPRepository) HasPending(ctx context.Context, email string, now time.Time) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM otps WHERE email = $1 AND NOT is_used AND expires_at > $2)`,
		email, now,
	).Scan(&ok)
	return ok, mapPgErr(err)
}

func (r *PgOTPRepository) DeleteUnused(ctx context.Context, email string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otps WHERE email = $1 AND NOT is_used`, email)
	if err != nil {
		return 0, mapPgErr(err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otps WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, mapPgErr(err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgOTPRepository) Delete(ctx context.Context, id string) error {
	id, err := parseUUID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM otps WHERE id = $1`, id)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
