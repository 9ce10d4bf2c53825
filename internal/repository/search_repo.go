package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"legal-companion/internal/domain"
)

// SearchHistoryRepository guarda consultas y las agrega para reportes.
type SearchHistoryRepository interface {
	Create(ctx context.Context, entry domain.SearchEntry) error
	Count(ctx context.Context, q SearchQuery) (int64, error)
	TopQueries(ctx context.Context, action string, since time.Time, limit int) ([]domain.TopicCount, error)
	Recent(ctx context.Context, action string, limit int) ([]domain.SearchEntry, error)
}

// SearchQuery acota un conteo por accion y rango [From, To). Los ceros no filtran.
type SearchQuery struct {
	Action string
	From   time.Time
	To     time.Time
}

// PgSearchHistoryRepository implementa SearchHistoryRepository usando pgxpool.
type PgSearchHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgSearchHistoryRepository(pool *pgxpool.Pool) *PgSearchHistoryRepository {
	return &PgSearchHistoryRepository{pool: pool}
}

func (r *PgSearchHistoryRepository) Create(ctx context.Context, entry domain.SearchEntry) error {
	const query = `
		INSERT INTO search_history (query, user_id, action, timestamp)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, entry.Query, nullIfEmpty(entry.UserID), entry.Action, entry.Timestamp)
	return mapPgErr(err)
}

func (r *PgSearchHistoryRepository) Count(ctx context.Context, q SearchQuery) (int64, error) {
	w := &whereBuilder{}
	if q.Action != "" {
		w.add("action = $%d", q.Action)
	}
	if !q.From.IsZero() {
		w.add("timestamp >= $%d", q.From)
	}
	if !q.To.IsZero() {
		w.add("timestamp < $%d", q.To)
	}
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM search_history`+w.String(), w.args...).Scan(&n)
	return n, mapPgErr(err)
}

func (r *PgSearchHistoryRepository) TopQueries(ctx context.Context, action string, since time.Time, limit int) ([]domain.TopicCount, error) {
	const query = `
		SELECT lower(trim(query)) AS topic, count(*) AS n
		FROM search_history
		WHERE action = $1 AND timestamp >= $2 AND trim(query) <> ''
		GROUP BY topic
		ORDER BY n DESC, topic ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, action, since, limit)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	topics := make([]domain.TopicCount, 0, limit)
	for rows.Next() {
		var t domain.TopicCount
		if err := rows.Scan(&t.Topic, &t.Count); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (r *PgSearchHistoryRepository) Recent(ctx context.Context, action string, limit int) ([]domain.SearchEntry, error) {
	w := &whereBuilder{}
	if action != "" {
		w.add("action = $%d", action)
	}
	w.args = append(w.args, limit)
	query := `SELECT id::text, query, coalesce(user_id, ''), action, timestamp FROM search_history` +
		w.String() + ` ORDER BY timestamp DESC LIMIT $` + strconv.Itoa(len(w.args))

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	entries := make([]domain.SearchEntry, 0, limit)
	for rows.Next() {
		var e domain.SearchEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.UserID, &e.Action, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
