package httpserver

import "isuumo/internal/domain"

// Wire shapes. Popularity and stock stay server-side.

type chairDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Price       int64  `json:"price"`
	Height      int64  `json:"height"`
	Width       int64  `json:"width"`
	Depth       int64  `json:"depth"`
	Color       string `json:"color"`
	Features    string `json:"features"`
	Kind        string `json:"kind"`
}

type estateDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Rent        int64   `json:"rent"`
	DoorHeight  int64   `json:"doorHeight"`
	DoorWidth   int64   `json:"doorWidth"`
	Features    string  `json:"features"`
}

type chairSearchResponse struct {
	Count  int64      `json:"count"`
	Chairs []chairDTO `json:"chairs"`
}

type estateSearchResponse struct {
	Count   int64       `json:"count"`
	Estates []estateDTO `json:"estates"`
}

type chairListResponse struct {
	Chairs []chairDTO `json:"chairs"`
}

type estateListResponse struct {
	Estates []estateDTO `json:"estates"`
}

type coordinateDTO struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type nazotteRequest struct {
	Coordinates []coordinateDTO `json:"coordinates" validate:"required,dive"`
}

func (n nazotteRequest) polygon() domain.Polygon {
	p := make(domain.Polygon, len(n.Coordinates))
	for i, c := range n.Coordinates {
		p[i] = domain.Coordinate{Latitude: *c.Latitude, Longitude: *c.Longitude}
	}
	return p
}

func toChairDTO(c domain.Chair) chairDTO {
	return chairDTO{
		ID: c.ID, Name: c.Name, Description: c.Description, Thumbnail: c.Thumbnail,
		Price: c.Price, Height: c.Height, Width: c.Width, Depth: c.Depth,
		Color: c.Color, Features: c.Features, Kind: c.Kind,
	}
}

func toEstateDTO(e domain.Estate) estateDTO {
	return estateDTO{
		ID: e.ID, Name: e.Name, Description: e.Description, Thumbnail: e.Thumbnail, Address: e.Address,
		Latitude: e.Latitude, Longitude: e.Longitude, Rent: e.Rent,
		DoorHeight: e.DoorHeight, DoorWidth: e.DoorWidth, Features: e.Features,
	}
}

// Lists always encode as [] rather than null.

func toChairDTOs(cs []domain.Chair) []chairDTO {
	out := make([]chairDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, toChairDTO(c))
	}
	return out
}

func toEstateDTOs(es []domain.Estate) []estateDTO {
	out := make([]estateDTO, 0, len(es))
	for _, e := range es {
		out = append(out, toEstateDTO(e))
	}
	return out
}
