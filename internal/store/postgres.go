package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-chat/models"
)

// Postgres implements MessageStore, UserStore and GroupStore on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Insert(ctx context.Context, msg *models.Message) error {
	var groupID, receiverID *string
	switch msg.Kind {
	case models.KindGroup:
		groupID = &msg.GroupID
	case models.KindDirect:
		receiverID = &msg.ReceiverID
	default:
		return fmt.Errorf("insert message: unknown kind %q", msg.Kind)
	}

	query := `INSERT INTO messages (kind, group_id, sender_id, receiver_id, body)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	if err := s.pool.QueryRow(ctx, query, msg.Kind, groupID, msg.SenderID, receiverID, msg.Body).
		Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// historyFilter builds the WHERE clause for a room reference. Direct history
// is the unordered pair, so both sender/receiver orientations match.
func historyFilter(ref models.RoomRef) (string, []any) {
	if ref.Kind == models.KindGroup {
		return `kind = 'group' AND group_id = $1`, []any{ref.GroupID}
	}
	return `kind = 'direct' AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))`,
		[]any{ref.UserA, ref.UserB}
}

func (s *Postgres) Count(ctx context.Context, ref models.RoomRef) (int64, error) {
	where, args := historyFilter(ref)
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM messages WHERE `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return total, nil
}

func (s *Postgres) Messages(ctx context.Context, ref models.RoomRef, limit, offset int) ([]models.Message, error) {
	where, args := historyFilter(ref)
	query := fmt.Sprintf(`SELECT id, kind, COALESCE(group_id, ''), sender_id, COALESCE(receiver_id, ''), body, created_at
		FROM messages WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Kind, &m.GroupID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3) RETURNING created_at`
	return s.pool.QueryRow(ctx, query, user.ID, user.Username, user.PasswordHash).Scan(&user.CreatedAt)
}

func (s *Postgres) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	err := s.pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (s *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, username, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Postgres) CreateGroup(ctx context.Context, group *models.Group) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO groups (id, name) VALUES ($1, $2)`, group.ID, group.Name)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

func (s *Postgres) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	var g models.Group
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM groups WHERE id = $1`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

func (s *Postgres) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Postgres) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *Postgres) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}
