package repository

import (
	"context"

	"github.com/alexanderramin/ideaforge/internal/domain"
)

// SessionRepo persists chat sessions, their transcripts and the pointer to
// the active session. Upsert and SetActiveID should run inside one
// transaction so the pointer never references a missing session.
type SessionRepo interface {
	Upsert(ctx context.Context, s *domain.SessionState) error
	GetByID(ctx context.Context, id string) (*domain.SessionState, error)
	List(ctx context.Context) ([]*domain.SessionState, error)
	Delete(ctx context.Context, id string) error
	GetActiveID(ctx context.Context) (string, error)
	SetActiveID(ctx context.Context, id string) error
}
