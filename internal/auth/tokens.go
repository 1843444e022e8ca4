package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/ragserve/internal/db"
)

// Token is one API token record. The raw token is only available at
// creation; the store keeps its SHA-256 hash.
type Token struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Scope     string     `json:"scope"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// TokenStore manages API tokens in SQLite.
type TokenStore struct {
	db *db.DB
}

// NewTokenStore creates a token store.
func NewTokenStore(database *db.DB) *TokenStore {
	return &TokenStore{db: database}
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Create mints a new token and returns the raw secret alongside the record.
func (s *TokenStore) Create(ctx context.Context, name, scope string, ttl time.Duration) (string, *Token, error) {
	if scope == "" {
		scope = "read"
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}
	raw := "rs_" + hex.EncodeToString(buf)

	token := &Token{
		ID:        uuid.NewString(),
		Name:      name,
		Scope:     scope,
		CreatedAt: time.Now().UTC(),
	}

	var expiresAt *string
	if ttl > 0 {
		t := token.CreatedAt.Add(ttl)
		token.ExpiresAt = &t
		formatted := t.Format(time.RFC3339)
		expiresAt = &formatted
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_tokens (id, name, token_hash, scope, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		token.ID, name, hashToken(raw), scope,
		token.CreatedAt.Format(time.RFC3339), expiresAt,
	)
	if err != nil {
		return "", nil, fmt.Errorf("storing token: %w", err)
	}
	return raw, token, nil
}

// Verify looks up a raw token and returns the caller identity it grants, or
// nil when the token is unknown or expired. Verification updates last_used.
func (s *TokenStore) Verify(ctx context.Context, raw string) (*Identity, error) {
	var id, name, scope string
	var expiresAt sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, scope, expires_at FROM api_tokens WHERE token_hash = ?`,
		hashToken(raw),
	).Scan(&id, &name, &scope, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up token: %w", err)
	}

	if expiresAt.Valid {
		if t, err := time.Parse(time.RFC3339, expiresAt.String); err == nil && time.Now().After(t) {
			return nil, nil
		}
	}

	_, _ = s.db.ExecContext(ctx, `UPDATE api_tokens SET last_used = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)

	return &Identity{UserID: name, Role: scope}, nil
}

// List returns all tokens, newest first.
func (s *TokenStore) List(ctx context.Context) ([]Token, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, scope, created_at, expires_at, last_used
		FROM api_tokens ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	defer rows.Close()

	var tokens []Token
	for rows.Next() {
		var t Token
		var createdAt string
		var expiresAt, lastUsed sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Scope, &createdAt, &expiresAt, &lastUsed); err != nil {
			return nil, err
		}
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			t.CreatedAt = parsed
		}
		if expiresAt.Valid {
			if parsed, err := time.Parse(time.RFC3339, expiresAt.String); err == nil {
				t.ExpiresAt = &parsed
			}
		}
		if lastUsed.Valid {
			if parsed, err := time.Parse(time.RFC3339, lastUsed.String); err == nil {
				t.LastUsed = &parsed
			}
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// Revoke deletes a token by ID.
func (s *TokenStore) Revoke(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no token with id %s", id)
	}
	return nil
}
