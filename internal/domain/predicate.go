package domain

// Field names a filterable listing attribute. The storage layer owns the mapping to columns.
type Field string

const (
	FieldPrice      Field = "price"
	FieldHeight     Field = "height"
	FieldWidth      Field = "width"
	FieldDepth      Field = "depth"
	FieldColor      Field = "color"
	FieldKind       Field = "kind"
	FieldFeatures   Field = "features"
	FieldStock      Field = "stock"
	FieldRent       Field = "rent"
	FieldDoorHeight Field = "door_height"
	FieldDoorWidth  Field = "door_width"
)

// Unbounded marks an open side of a range.
const Unbounded int64 = -1

// Predicate is one conjunct of a listing query.
type Predicate interface {
	predicate()
}

// RangePredicate is Min <= field < Max; a side equal to Unbounded is omitted.
type RangePredicate struct {
	Field Field
	Min   int64
	Max   int64
}

// EqualPredicate is field = Value.
type EqualPredicate struct {
	Field Field
	Value string
}

// ContainsTagPredicate matches when the stored comma-joined tag list contains Tag as a substring.
// A tag that is a substring of another tag therefore also matches the longer one.
type ContainsTagPredicate struct {
	Field Field
	Tag   string
}

func (RangePredicate) predicate()       {}
func (EqualPredicate) predicate()       {}
func (ContainsTagPredicate) predicate() {}

// InStock is the implicit stock > 0 constraint of chair searches.
var InStock = RangePredicate{Field: FieldStock, Min: 1, Max: Unbounded}

// ListingQuery is a conjunctive filter plus one page. Results are always ordered popularity DESC, id ASC.
type ListingQuery struct {
	Filters []Predicate
	Page    int
	PerPage int
}

func (q ListingQuery) Offset() int { return q.PerPage * q.Page }
