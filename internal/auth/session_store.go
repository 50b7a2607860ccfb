package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"

	apperrors "github.com/austinpray/feed-baby/internal/errors"
	"github.com/austinpray/feed-baby/internal/model"
	"github.com/austinpray/feed-baby/internal/repository"
)

// tokenBytes gives 256 bits of entropy per token (64 hex characters).
const tokenBytes = 32

// SessionStore manages login sessions backed by persistent storage.
type SessionStore interface {
	// Create persists a new session for the user. A storage failure is
	// surfaced as ErrSessionCreate: an unauthenticated user must not
	// appear logged in.
	Create(ctx context.Context, userID uint) (*model.Session, error)
	// Get resolves a session by id. Missing rows and storage errors both
	// yield nil; lookups fail toward anonymous, never toward authenticated.
	Get(ctx context.Context, id string) *model.Session
	// Delete removes a session. Idempotent; deleting a session that does
	// not exist is not an error the caller needs to see.
	Delete(ctx context.Context, id string)
}

type sessionStore struct {
	repo repository.SessionRepository
}

// NewSessionStore creates a session store over the given repository.
func NewSessionStore(repo repository.SessionRepository) SessionStore {
	return &sessionStore{repo: repo}
}

func (s *sessionStore) Create(ctx context.Context, userID uint) (*model.Session, error) {
	id, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSessionCreate, err)
	}
	csrfToken, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSessionCreate, err)
	}

	session := &model.Session{
		ID:        id,
		UserID:    userID,
		CSRFToken: csrfToken,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		// Log the cause server-side; the caller only sees the sentinel.
		log.Printf("session store: create for user %d: %v", userID, err)
		return nil, fmt.Errorf("%w: storage write failed", apperrors.ErrSessionCreate)
	}
	return session, nil
}

func (s *sessionStore) Get(ctx context.Context, id string) *model.Session {
	if id == "" {
		return nil
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	return session
}

func (s *sessionStore) Delete(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.Printf("session store: delete %.8s...: %v", id, err)
	}
}

// newToken returns a fresh unguessable token as lowercase hex.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
