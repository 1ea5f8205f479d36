package audit

import (
	"context"
	"time"

	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ListEventsQuery filters the audit trail
type ListEventsQuery struct {
	EntityType string
	EntityID   *uuid.UUID
	ActorID    string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// QueryService reads the persisted audit trail
type QueryService struct {
	repo audit.Repository
}

// NewQueryService creates a QueryService
func NewQueryService(repo audit.Repository) *QueryService {
	return &QueryService{repo: repo}
}

// List returns audit events newest first
func (s *QueryService) List(ctx context.Context, q ListEventsQuery) (shared.Paginated[audit.Event], error) {
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return shared.Paginated[audit.Event]{}, shared.NewValidationError("to", "must not be before from")
	}
	filter := shared.Filter{Page: q.Page, PageSize: q.PageSize, OrderBy: "occurred_at"}.Normalize()
	events, total, err := s.repo.List(ctx, audit.Filter{
		Filter:     filter,
		EntityType: q.EntityType,
		EntityID:   q.EntityID,
		ActorID:    q.ActorID,
		From:       q.From,
		To:         q.To,
	})
	if err != nil {
		return shared.Paginated[audit.Event]{}, err
	}
	return shared.NewPaginated(events, total, filter.Page, filter.PageSize), nil
}
