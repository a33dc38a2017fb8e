package app

import (
	"context"
	"errors"

	"isuumo/internal/catalog"
	"isuumo/internal/domain"
)

// QueryService serves every read path. Nothing is cached; each call goes to the store.
type QueryService struct {
	chairs   domain.ChairRepository
	estates  domain.EstateRepository
	catalog  *catalog.Catalog
	compiler *FacetCompiler
}

func NewQueryService(c domain.ChairRepository, e domain.EstateRepository, cat *catalog.Catalog) *QueryService {
	return &QueryService{chairs: c, estates: e, catalog: cat, compiler: NewFacetCompiler(cat)}
}

// Catalog exposes the search conditions verbatim.
func (s *QueryService) Catalog() *catalog.Catalog { return s.catalog }

func (s *QueryService) SearchChairs(ctx context.Context, req ChairSearchRequest) (domain.ChairsPage, error) {
	q, err := s.compiler.CompileChair(req)
	if err != nil {
		return domain.ChairsPage{}, err
	}
	return s.chairs.SearchChairs(ctx, q)
}

func (s *QueryService) SearchEstates(ctx context.Context, req EstateSearchRequest) (domain.EstatesPage, error) {
	q, err := s.compiler.CompileEstate(req)
	if err != nil {
		return domain.EstatesPage{}, err
	}
	return s.estates.SearchEstates(ctx, q)
}

// GetChair hides sold-out chairs behind ErrItemNotFound.
func (s *QueryService) GetChair(ctx context.Context, id int64) (domain.Chair, error) {
	c, err := s.chairs.GetChair(ctx, id)
	if err != nil {
		return domain.Chair{}, err
	}
	if !c.InStock() {
		return domain.Chair{}, domain.ErrItemNotFound.Withf("chair %d is sold out", id)
	}
	return c, nil
}

func (s *QueryService) GetEstate(ctx context.Context, id int64) (domain.Estate, error) {
	return s.estates.GetEstate(ctx, id)
}

func (s *QueryService) LowPricedChairs(ctx context.Context) ([]domain.Chair, error) {
	return s.chairs.LowPricedChairs(ctx, domain.DefaultListLimit)
}

func (s *QueryService) LowPricedEstates(ctx context.Context) ([]domain.Estate, error) {
	return s.estates.LowPricedEstates(ctx, domain.DefaultListLimit)
}

// SearchEstatesInPolygon pre-filters by bounding box, keeps the candidates the polygon contains in
// popularity order, and stops at NazotteLimit. Count is the number returned, not the number matching.
func (s *QueryService) SearchEstatesInPolygon(ctx context.Context, region domain.Polygon) (domain.EstatesPage, error) {
	if len(region) == 0 {
		return domain.EstatesPage{}, domain.ErrEmptyRegion
	}
	candidates, err := s.estates.EstatesInBoundingBox(ctx, region.BoundingBox())
	if err != nil {
		return domain.EstatesPage{}, err
	}
	out := make([]domain.Estate, 0, min(len(candidates), domain.NazotteLimit))
	for _, e := range candidates {
		if !region.Contains(e.Location()) {
			continue
		}
		out = append(out, e)
		if len(out) == domain.NazotteLimit {
			break
		}
	}
	return domain.EstatesPage{Count: int64(len(out)), Items: out}, nil
}

// RecommendEstates lists estates a chair fits into. An unknown chair is the caller's fault, so it
// is reported as ErrInvalidItem rather than ErrItemNotFound.
func (s *QueryService) RecommendEstates(ctx context.Context, chairID int64) ([]domain.Estate, error) {
	c, err := s.chairs.GetChair(ctx, chairID)
	if errors.Is(err, domain.ErrItemNotFound) {
		return nil, domain.ErrInvalidItem.Withf("invalid format searchRecommendedEstateWithChair id: %d", chairID)
	}
	if err != nil {
		return nil, err
	}
	return s.estates.EstatesAdmitting(ctx, c.Dimensions(), domain.RecommendLimit)
}
