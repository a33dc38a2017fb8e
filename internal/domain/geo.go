package domain

import "math"

type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// BoundingBox is inclusive on every side.
type BoundingBox struct {
	MinLatitude, MaxLatitude   float64
	MinLongitude, MaxLongitude float64
}

func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLatitude && c.Latitude <= b.MaxLatitude &&
		c.Longitude >= b.MinLongitude && c.Longitude <= b.MaxLongitude
}

// Polygon is the region implied by connecting consecutive vertices and closing back to the first.
// A trailing vertex equal to the first is allowed and changes nothing.
type Polygon []Coordinate

// BoundingBox of a non-empty polygon.
func (p Polygon) BoundingBox() BoundingBox {
	bb := BoundingBox{
		MinLatitude: p[0].Latitude, MaxLatitude: p[0].Latitude,
		MinLongitude: p[0].Longitude, MaxLongitude: p[0].Longitude,
	}
	for _, c := range p[1:] {
		bb.MinLatitude = math.Min(bb.MinLatitude, c.Latitude)
		bb.MaxLatitude = math.Max(bb.MaxLatitude, c.Latitude)
		bb.MinLongitude = math.Min(bb.MinLongitude, c.Longitude)
		bb.MaxLongitude = math.Max(bb.MaxLongitude, c.Longitude)
	}
	return bb
}

// Contains is a planar even-odd ray cast (latitude as x, longitude as y).
// Points on an edge or vertex count as inside.
func (p Polygon) Contains(pt Coordinate) bool {
	n := len(p)
	if n == 0 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p[i], p[j]
		if onSegment(a, b, pt) {
			return true
		}
		if (a.Longitude > pt.Longitude) != (b.Longitude > pt.Longitude) {
			x := (b.Latitude-a.Latitude)*(pt.Longitude-a.Longitude)/(b.Longitude-a.Longitude) + a.Latitude
			if pt.Latitude < x {
				inside = !inside
			}
		}
	}
	return inside
}

const collinearEpsilon = 1e-12

func onSegment(a, b, pt Coordinate) bool {
	cross := (b.Latitude-a.Latitude)*(pt.Longitude-a.Longitude) - (b.Longitude-a.Longitude)*(pt.Latitude-a.Latitude)
	if math.Abs(cross) > collinearEpsilon {
		return false
	}
	return pt.Latitude >= math.Min(a.Latitude, b.Latitude) && pt.Latitude <= math.Max(a.Latitude, b.Latitude) &&
		pt.Longitude >= math.Min(a.Longitude, b.Longitude) && pt.Longitude <= math.Max(a.Longitude, b.Longitude)
}
