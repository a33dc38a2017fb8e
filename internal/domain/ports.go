package domain

import "context"

type ChairRepository interface {
	// Write paths
	InsertChairs(ctx context.Context, cs []Chair) error
	// ReserveChair decrements stock by one under a row lock; ErrOutOfStock when absent or sold out.
	ReserveChair(ctx context.Context, id int64) error

	// Read paths
	GetChair(ctx context.Context, id int64) (Chair, error)
	SearchChairs(ctx context.Context, q ListingQuery) (ChairsPage, error)
	LowPricedChairs(ctx context.Context, limit int) ([]Chair, error)
}

type EstateRepository interface {
	// Write paths
	InsertEstates(ctx context.Context, es []Estate) error

	// Read paths
	GetEstate(ctx context.Context, id int64) (Estate, error)
	SearchEstates(ctx context.Context, q ListingQuery) (EstatesPage, error)
	LowPricedEstates(ctx context.Context, limit int) ([]Estate, error)
	// EstatesInBoundingBox is ordered popularity DESC, id ASC.
	EstatesInBoundingBox(ctx context.Context, bb BoundingBox) ([]Estate, error)
	// EstatesAdmitting returns estates whose door admits d in any orientation, ordered popularity DESC, id ASC.
	EstatesAdmitting(ctx context.Context, d Dimensions, limit int) ([]Estate, error)
}

// EventPublisher delivers post-commit notifications. Implementations JSON-encode v.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Event subjects.
const (
	SubjectChairReserved           = "chair.reserved"
	SubjectEstateDocumentRequested = "estate.document_requested"
)

type ChairReserved struct {
	ChairID int64 `json:"chairId"`
}

type EstateDocumentRequested struct {
	EstateID int64 `json:"estateId"`
}
