package mysql

import (
	"fmt"
	"strings"

	"isuumo/internal/domain"
)

// Filterable columns per table. Only names from these maps ever reach SQL text.
var (
	chairFilterColumns = map[domain.Field]string{
		domain.FieldPrice:    "price",
		domain.FieldHeight:   "height",
		domain.FieldWidth:    "width",
		domain.FieldDepth:    "depth",
		domain.FieldColor:    "color",
		domain.FieldKind:     "kind",
		domain.FieldFeatures: "features",
		domain.FieldStock:    "stock",
	}
	estateFilterColumns = map[domain.Field]string{
		domain.FieldRent:       "rent",
		domain.FieldDoorHeight: "door_height",
		domain.FieldDoorWidth:  "door_width",
		domain.FieldFeatures:   "features",
	}
)

// whereClause renders the conjunction of filters. An empty result means no WHERE at all.
func whereClause(columns map[domain.Field]string, filters []domain.Predicate) (string, []any, error) {
	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	col := func(f domain.Field) (string, error) {
		c, ok := columns[f]
		if !ok {
			return "", fmt.Errorf("field %q is not filterable here", f)
		}
		return c, nil
	}
	for _, p := range filters {
		switch p := p.(type) {
		case domain.RangePredicate:
			c, err := col(p.Field)
			if err != nil {
				return "", nil, err
			}
			if p.Min != domain.Unbounded {
				conds = append(conds, c+" >= ?")
				args = append(args, p.Min)
			}
			if p.Max != domain.Unbounded {
				conds = append(conds, c+" < ?")
				args = append(args, p.Max)
			}
		case domain.EqualPredicate:
			c, err := col(p.Field)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, c+" = ?")
			args = append(args, p.Value)
		case domain.ContainsTagPredicate:
			c, err := col(p.Field)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, c+" LIKE ?")
			args = append(args, "%"+p.Tag+"%")
		default:
			return "", nil, fmt.Errorf("unsupported predicate %T", p)
		}
	}
	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
