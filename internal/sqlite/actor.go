package sqlite

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
	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/rpggio/freightline/internal/repository"
)

// ActorRepository maps API keys to actors and serves as the actor directory.
type ActorRepository struct {
	db *DB
}

// NewActorRepository creates a new ActorRepository
func NewActorRepository(db *DB) *ActorRepository {
	return &ActorRepository{db: db}
}

// HashKey returns the stored form of an API key.
func HashKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateKey returns a new random API key.
func GenerateKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return "fl_" + hex.EncodeToString(buf), nil
}

// AddKey stores token for actor. When actor.ID is empty a new id is assigned.
func (r *ActorRepository) AddKey(ctx context.Context, token string, actor access.Actor) (access.Actor, error) {
	if actor.ID == "" {
		actor.ID = uuid.NewString()
	}
	query := `
		INSERT INTO api_keys (key_hash, actor_id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, HashKey(token), actor.ID, actor.Name, actor.Email, actor.Role, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return access.Actor{}, repository.ErrDuplicate
		}
		return access.Actor{}, fmt.Errorf("failed to add api key: %w", err)
	}
	return actor, nil
}

// ResolveToken returns the actor owning token.
func (r *ActorRepository) ResolveToken(ctx context.Context, token string) (access.Actor, error) {
	hash := HashKey(token)
	query := `SELECT actor_id, name, email, role FROM api_keys WHERE key_hash = ?`

	var actor access.Actor
	err := r.db.QueryRowContext(ctx, query, hash).Scan(&actor.ID, &actor.Name, &actor.Email, &actor.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return access.Actor{}, repository.ErrNotFound
	}
	if err != nil {
		return access.Actor{}, fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash); err != nil {
		return access.Actor{}, fmt.Errorf("failed to touch api key: %w", err)
	}
	return actor, nil
}

// LookupActor returns the actor with id.
func (r *ActorRepository) LookupActor(ctx context.Context, id string) (*access.Actor, error) {
	query := `
		SELECT actor_id, name, email, role
		FROM api_keys
		WHERE actor_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`
	var actor access.Actor
	err := r.db.QueryRowContext(ctx, query, id).Scan(&actor.ID, &actor.Name, &actor.Email, &actor.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up actor: %w", err)
	}
	return &actor, nil
}
