package domain

// Estate is a fixed property with an entrance opening and a location.
type Estate struct {
	ID          int64
	Name        string
	Description string
	Thumbnail   string
	Address     string
	Latitude    float64
	Longitude   float64
	Rent        int64
	DoorHeight  int64
	DoorWidth   int64
	Features    string
	Popularity  int64
}

func (e Estate) Location() Coordinate {
	return Coordinate{Latitude: e.Latitude, Longitude: e.Longitude}
}

type EstatesPage struct {
	Count int64
	Items []Estate
}

// Fixed result sizes enforced regardless of the caller.
const (
	DefaultListLimit = 20
	NazotteLimit     = 50
	RecommendLimit   = 20
)
