package app

import (
	"math"
	"strconv"
	"strings"

	"isuumo/internal/catalog"
	"isuumo/internal/domain"
)

// ChairSearchRequest carries raw facet values; an empty string means the facet is absent.
type ChairSearchRequest struct {
	PriceRangeID  string
	HeightRangeID string
	WidthRangeID  string
	DepthRangeID  string
	Kind          string
	Color         string
	Features      string
	Page          string
	PerPage       string
}

type EstateSearchRequest struct {
	DoorHeightRangeID string
	DoorWidthRangeID  string
	RentRangeID       string
	Features          string
	Page              string
	PerPage           string
}

// facetStep pairs a raw value with the builder that turns it into predicates.
type facetStep struct {
	raw   string
	build func(raw string) ([]domain.Predicate, error)
}

// FacetCompiler turns search requests into validated listing queries against one catalog.
type FacetCompiler struct {
	cat *catalog.Catalog
}

func NewFacetCompiler(c *catalog.Catalog) *FacetCompiler { return &FacetCompiler{cat: c} }

func (c *FacetCompiler) CompileChair(req ChairSearchRequest) (domain.ListingQuery, error) {
	cc := &c.cat.Chair
	filters, err := compile([]facetStep{
		{req.PriceRangeID, rangeStep("priceRangeId", domain.FieldPrice, &cc.Price)},
		{req.HeightRangeID, rangeStep("heightRangeId", domain.FieldHeight, &cc.Height)},
		{req.WidthRangeID, rangeStep("widthRangeId", domain.FieldWidth, &cc.Width)},
		{req.DepthRangeID, rangeStep("depthRangeId", domain.FieldDepth, &cc.Depth)},
		{req.Kind, equalStep(domain.FieldKind)},
		{req.Color, equalStep(domain.FieldColor)},
		{req.Features, tagsStep(domain.FieldFeatures)},
	})
	if err != nil {
		return domain.ListingQuery{}, err
	}
	filters = append(filters, domain.InStock)
	return paginate(filters, req.Page, req.PerPage)
}

func (c *FacetCompiler) CompileEstate(req EstateSearchRequest) (domain.ListingQuery, error) {
	ec := &c.cat.Estate
	filters, err := compile([]facetStep{
		{req.DoorHeightRangeID, rangeStep("doorHeightRangeId", domain.FieldDoorHeight, &ec.DoorHeight)},
		{req.DoorWidthRangeID, rangeStep("doorWidthRangeId", domain.FieldDoorWidth, &ec.DoorWidth)},
		{req.RentRangeID, rangeStep("rentRangeId", domain.FieldRent, &ec.Rent)},
		{req.Features, tagsStep(domain.FieldFeatures)},
	})
	if err != nil {
		return domain.ListingQuery{}, err
	}
	return paginate(filters, req.Page, req.PerPage)
}

// compile runs the present steps in order. A request with no present facet is rejected.
func compile(steps []facetStep) ([]domain.Predicate, error) {
	var out []domain.Predicate
	for _, s := range steps {
		if s.raw == "" {
			continue
		}
		ps, err := s.build(s.raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
	}
	if len(out) == 0 {
		return nil, domain.ErrEmptySearchCondition
	}
	return out, nil
}

func rangeStep(param string, f domain.Field, facet *catalog.RangeFacet) func(string) ([]domain.Predicate, error) {
	return func(raw string) ([]domain.Predicate, error) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, domain.ErrInvalidBucketID.Withf("%s invalid: %q", param, raw)
		}
		b, err := facet.Lookup(id)
		if err != nil {
			return nil, domain.ErrInvalidBucketID.Withf("%s invalid: %d", param, id)
		}
		return []domain.Predicate{b.Predicate(f)}, nil
	}
}

func equalStep(f domain.Field) func(string) ([]domain.Predicate, error) {
	return func(raw string) ([]domain.Predicate, error) {
		return []domain.Predicate{domain.EqualPredicate{Field: f, Value: raw}}, nil
	}
}

// tagsStep ANDs one containment predicate per comma-separated token.
func tagsStep(f domain.Field) func(string) ([]domain.Predicate, error) {
	return func(raw string) ([]domain.Predicate, error) {
		tokens := strings.Split(raw, ",")
		out := make([]domain.Predicate, 0, len(tokens))
		for _, t := range tokens {
			out = append(out, domain.ContainsTagPredicate{Field: f, Tag: t})
		}
		return out, nil
	}
}

func paginate(filters []domain.Predicate, rawPage, rawPerPage string) (domain.ListingQuery, error) {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 0 {
		return domain.ListingQuery{}, domain.ErrInvalidPagination.Withf("invalid format page parameter: %q", rawPage)
	}
	perPage, err := strconv.Atoi(rawPerPage)
	if err != nil || perPage <= 0 {
		return domain.ListingQuery{}, domain.ErrInvalidPagination.Withf("invalid format perPage parameter: %q", rawPerPage)
	}
	if page > math.MaxInt/perPage {
		return domain.ListingQuery{}, domain.ErrInvalidPagination.Withf("page %d out of range", page)
	}
	return domain.ListingQuery{Filters: filters, Page: page, PerPage: perPage}, nil
}
