// Package catalog holds the immutable bucket partitions and facet lists exposed as search conditions.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"isuumo/internal/domain"
)

// Bucket is Min <= v < Max; -1 on either side leaves it open.
type Bucket struct {
	ID  int64 `json:"id"`
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Predicate constrains field to the bucket.
func (b Bucket) Predicate(f domain.Field) domain.RangePredicate {
	return domain.RangePredicate{Field: f, Min: b.Min, Max: b.Max}
}

// RangeFacet partitions one numeric attribute.
type RangeFacet struct {
	Prefix string   `json:"prefix"`
	Suffix string   `json:"suffix"`
	Ranges []Bucket `json:"ranges"`

	byID map[int64]int
}

// NewRangeFacet builds n+1 contiguous buckets from n strictly increasing separators.
func NewRangeFacet(prefix, suffix string, separators []int64) (*RangeFacet, error) {
	for i := 1; i < len(separators); i++ {
		if separators[i] <= separators[i-1] {
			return nil, fmt.Errorf("separators must be strictly increasing: %d after %d", separators[i], separators[i-1])
		}
	}
	ranges := make([]Bucket, 0, len(separators)+1)
	before := domain.Unbounded
	for i, s := range append(append([]int64(nil), separators...), domain.Unbounded) {
		ranges = append(ranges, Bucket{ID: int64(i), Min: before, Max: s})
		before = s
	}
	f := &RangeFacet{Prefix: prefix, Suffix: suffix, Ranges: ranges}
	if err := f.index(); err != nil {
		return nil, err
	}
	return f, nil
}

func mustRangeFacet(prefix, suffix string, separators ...int64) RangeFacet {
	f, err := NewRangeFacet(prefix, suffix, separators)
	if err != nil {
		panic(err)
	}
	return *f
}

// Lookup resolves a bucket id in O(1).
func (f *RangeFacet) Lookup(id int64) (Bucket, error) {
	i, ok := f.byID[id]
	if !ok {
		return Bucket{}, domain.ErrInvalidBucketID.Withf("range id %d is not defined", id)
	}
	return f.Ranges[i], nil
}

func (f *RangeFacet) UnmarshalJSON(b []byte) error {
	type plain RangeFacet
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*f = RangeFacet(p)
	return f.index()
}

// index validates the partition and builds the id lookup.
func (f *RangeFacet) index() error {
	if len(f.Ranges) == 0 {
		return fmt.Errorf("range facet has no buckets")
	}
	sorted := append([]Bucket(nil), f.Ranges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Min == domain.Unbounded {
			return sorted[j].Min != domain.Unbounded
		}
		return sorted[j].Min != domain.Unbounded && sorted[i].Min < sorted[j].Min
	})
	if sorted[0].Min != domain.Unbounded {
		return fmt.Errorf("first bucket must be open below, got min %d", sorted[0].Min)
	}
	if last := sorted[len(sorted)-1]; last.Max != domain.Unbounded {
		return fmt.Errorf("last bucket must be open above, got max %d", last.Max)
	}
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i].Max != sorted[i+1].Min {
			return fmt.Errorf("buckets %d and %d are not contiguous", sorted[i].ID, sorted[i+1].ID)
		}
	}
	f.byID = make(map[int64]int, len(f.Ranges))
	for i, r := range f.Ranges {
		if _, dup := f.byID[r.ID]; dup {
			return fmt.Errorf("duplicate bucket id %d", r.ID)
		}
		f.byID[r.ID] = i
	}
	return nil
}

type ListFacet struct {
	List []string `json:"list"`
}

type ChairCatalog struct {
	Height  RangeFacet `json:"height"`
	Width   RangeFacet `json:"width"`
	Depth   RangeFacet `json:"depth"`
	Price   RangeFacet `json:"price"`
	Color   ListFacet  `json:"color"`
	Feature ListFacet  `json:"feature"`
	Kind    ListFacet  `json:"kind"`
}

type EstateCatalog struct {
	DoorWidth  RangeFacet `json:"doorWidth"`
	DoorHeight RangeFacet `json:"doorHeight"`
	Rent       RangeFacet `json:"rent"`
	Feature    ListFacet  `json:"feature"`
}

// Catalog is loaded once at start-up and shared read-only.
type Catalog struct {
	Chair  ChairCatalog
	Estate EstateCatalog
}

// Load reads the chair and estate catalogs; an empty path falls back to the built-in catalog.
func Load(chairPath, estatePath string) (*Catalog, error) {
	c := Default()
	if chairPath != "" {
		var cc ChairCatalog
		if err := readJSON(chairPath, &cc); err != nil {
			return nil, fmt.Errorf("chair catalog: %w", err)
		}
		if err := requireRanges(map[string]*RangeFacet{
			"height": &cc.Height, "width": &cc.Width, "depth": &cc.Depth, "price": &cc.Price,
		}); err != nil {
			return nil, fmt.Errorf("chair catalog: %w", err)
		}
		c.Chair = cc
	}
	if estatePath != "" {
		var ec EstateCatalog
		if err := readJSON(estatePath, &ec); err != nil {
			return nil, fmt.Errorf("estate catalog: %w", err)
		}
		if err := requireRanges(map[string]*RangeFacet{
			"doorWidth": &ec.DoorWidth, "doorHeight": &ec.DoorHeight, "rent": &ec.Rent,
		}); err != nil {
			return nil, fmt.Errorf("estate catalog: %w", err)
		}
		c.Estate = ec
	}
	return c, nil
}

// requireRanges rejects files that omit a numeric facet; UnmarshalJSON only runs for keys present.
func requireRanges(facets map[string]*RangeFacet) error {
	for name, f := range facets {
		if f.byID == nil {
			return fmt.Errorf("%s: missing ranges", name)
		}
	}
	return nil
}

func readJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
