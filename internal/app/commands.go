package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"isuumo/internal/domain"
)

type CommandService struct {
	chairs  domain.ChairRepository
	estates domain.EstateRepository
	events  domain.EventPublisher
}

// NewCommandService wires the write paths. A nil publisher disables events.
func NewCommandService(c domain.ChairRepository, e domain.EstateRepository, ev domain.EventPublisher) *CommandService {
	if ev == nil {
		ev = NopPublisher{}
	}
	return &CommandService{chairs: c, estates: e, events: ev}
}

// Reserve takes one unit of a chair. The store holds the row lock for the whole check-and-decrement
// and rolls back on any failure, so stock never goes negative and concurrent callers never
// double-spend. The unit of work is detached from caller cancellation so a disconnect cannot land
// between decrement and commit. Callers must not retry a failed reservation blindly.
func (s *CommandService) Reserve(ctx context.Context, chairID int64) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.chairs.ReserveChair(ctx, chairID); err != nil {
		return err
	}
	s.publish(ctx, domain.SubjectChairReserved, domain.ChairReserved{ChairID: chairID})
	return nil
}

// RequestDocument records interest in an estate; unknown estates are ErrItemNotFound.
func (s *CommandService) RequestDocument(ctx context.Context, estateID int64) error {
	if _, err := s.estates.GetEstate(ctx, estateID); err != nil {
		return err
	}
	s.publish(ctx, domain.SubjectEstateDocumentRequested, domain.EstateDocumentRequested{EstateID: estateID})
	return nil
}

// publish is best effort: the state change already committed, so a delivery failure is only logged.
func (s *CommandService) publish(ctx context.Context, subject string, v any) {
	if err := s.events.Publish(ctx, subject, v); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("event publish failed")
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
