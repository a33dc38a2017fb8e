package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"isuumo/internal/domain"
)

/********** CSV column layouts (bulk-load files) **********/

const (
	chairColumns  = 13 // id,name,description,thumbnail,price,height,width,depth,color,features,kind,popularity,stock
	estateColumns = 12 // id,name,description,thumbnail,address,latitude,longitude,rent,door_height,door_width,features,popularity
)

var validate = validator.New()

type chairRecord struct {
	ID          int64  `validate:"gt=0"`
	Name        string `validate:"required"`
	Description string
	Thumbnail   string
	Price       int64 `validate:"gte=0"`
	Height      int64 `validate:"gt=0"`
	Width       int64 `validate:"gt=0"`
	Depth       int64 `validate:"gt=0"`
	Color       string
	Features    string
	Kind        string
	Popularity  int64 `validate:"gte=0"`
	Stock       int64 `validate:"gte=0"`
}

type estateRecord struct {
	ID          int64  `validate:"gt=0"`
	Name        string `validate:"required"`
	Description string
	Thumbnail   string
	Address     string
	Latitude    float64 `validate:"gte=-90,lte=90"`
	Longitude   float64 `validate:"gte=-180,lte=180"`
	Rent        int64   `validate:"gte=0"`
	DoorHeight  int64   `validate:"gt=0"`
	DoorWidth   int64   `validate:"gt=0"`
	Features    string
	Popularity  int64 `validate:"gte=0"`
}

/********** tiny helpers **********/

// fieldReader parses columns in order and remembers the first failure.
type fieldReader struct {
	rec []string
	i   int
	err error
}

func (r *fieldReader) str() string {
	v := r.rec[r.i]
	r.i++
	return v
}

func (r *fieldReader) integer() int64 {
	col := r.i
	s := strings.TrimSpace(r.str())
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %d: %q is not an integer", col+1, s)
	}
	return n
}

func (r *fieldReader) number() float64 {
	col := r.i
	s := strings.TrimSpace(r.str())
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %d: %q is not a number", col+1, s)
	}
	return f
}

/********** record mappers **********/

func mapChairRecord(rec []string) (domain.Chair, error) {
	if len(rec) != chairColumns {
		return domain.Chair{}, fmt.Errorf("chair record has %d columns, want %d", len(rec), chairColumns)
	}
	r := &fieldReader{rec: rec}
	cr := chairRecord{
		ID: r.integer(), Name: r.str(), Description: r.str(), Thumbnail: r.str(),
		Price: r.integer(), Height: r.integer(), Width: r.integer(), Depth: r.integer(),
		Color: r.str(), Features: r.str(), Kind: r.str(),
		Popularity: r.integer(), Stock: r.integer(),
	}
	if r.err != nil {
		return domain.Chair{}, r.err
	}
	if err := validate.Struct(cr); err != nil {
		return domain.Chair{}, err
	}
	return domain.Chair(cr), nil
}

func mapEstateRecord(rec []string) (domain.Estate, error) {
	if len(rec) != estateColumns {
		return domain.Estate{}, fmt.Errorf("estate record has %d columns, want %d", len(rec), estateColumns)
	}
	r := &fieldReader{rec: rec}
	er := estateRecord{
		ID: r.integer(), Name: r.str(), Description: r.str(), Thumbnail: r.str(), Address: r.str(),
		Latitude: r.number(), Longitude: r.number(),
		Rent: r.integer(), DoorHeight: r.integer(), DoorWidth: r.integer(),
		Features: r.str(), Popularity: r.integer(),
	}
	if r.err != nil {
		return domain.Estate{}, r.err
	}
	if err := validate.Struct(er); err != nil {
		return domain.Estate{}, err
	}
	return domain.Estate(er), nil
}
