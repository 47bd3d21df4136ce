package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/collab-edit/collab-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRecord — строка журнала активности. Журнал write-only для ядра:
// присоединения пишутся fire-and-forget и на решения о presence не влияют.
type UserRecord struct {
	ID           string     `db:"id"`
	ConnectionID string     `db:"connection_id"`
	RoomID       string     `db:"room_id"`
	Username     string     `db:"username"`
	JoinedAt     time.Time  `db:"joined_at"`
	LeftAt       *time.Time `db:"left_at"`
}

type UserLogRepository struct {
	db *pgxpool.Pool
}

func NewUserLogRepository(db *pgxpool.Pool) *UserLogRepository {
	return &UserLogRepository{db: db}
}

// CreateUserRecord фиксирует вход участника в комнату.
func (r *UserLogRepository) CreateUserRecord(ctx context.Context, p domain.Participant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_log (connection_id, room_id, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (connection_id) DO NOTHING
	`, p.ConnectionID, p.RoomID, p.Username)
	if err != nil {
		return fmt.Errorf("user_log insert: %w", err)
	}
	return nil
}

// DeleteUserRecord помечает запись закрытой по connection id.
// Журналу важен факт ухода, саму строку храним для истории.
func (r *UserLogRepository) DeleteUserRecord(ctx context.Context, connID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE user_log SET left_at = now() WHERE connection_id = $1 AND left_at IS NULL`,
		connID)
	if err != nil {
		return fmt.Errorf("user_log close: %w", err)
	}
	return nil
}

// Delete удаляет запись журнала по id (административная операция).
func (r *UserLogRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM user_log WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindByUsername возвращает последнюю запись журнала для имени.
func (r *UserLogRepository) FindByUsername(ctx context.Context, username string) (*UserRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, connection_id, room_id, username, joined_at, left_at
		FROM user_log
		WHERE username = $1
		ORDER BY joined_at DESC, id DESC
		LIMIT 1
	`, username)

	var rec UserRecord
	if err := row.Scan(&rec.ID, &rec.ConnectionID, &rec.RoomID, &rec.Username, &rec.JoinedAt, &rec.LeftAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List — журнал с курсорной пагинацией (joined_at,id DESC).
func (r *UserLogRepository) List(ctx context.Context, limit int, after string) ([]UserRecord, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(after)
	if err != nil {
		return nil, "", err
	}

	const q = `
		SELECT id, connection_id, room_id, username, joined_at, left_at
		FROM user_log
		WHERE ($1::timestamptz IS NULL OR joined_at < $1
		       OR (joined_at = $1 AND id < $2))
		ORDER BY joined_at DESC, id DESC
		LIMIT $3`

	var joinedAt any
	var id any
	if cur != nil {
		joinedAt = cur.JoinedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, q, joinedAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []UserRecord
	for rows.Next() {
		var rec UserRecord
		if err := rows.Scan(&rec.ID, &rec.ConnectionID, &rec.RoomID, &rec.Username, &rec.JoinedAt, &rec.LeftAt); err != nil {
			return nil, "", err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeCursor(Cursor{JoinedAt: last.JoinedAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, nil
}
