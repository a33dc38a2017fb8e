package domain

import "strings"

// Chair is a movable item. Features is the comma-joined tag list as stored.
type Chair struct {
	ID          int64
	Name        string
	Description string
	Thumbnail   string
	Price       int64
	Height      int64
	Width       int64
	Depth       int64
	Color       string
	Features    string
	Kind        string
	Popularity  int64
	Stock       int64
}

func (c Chair) InStock() bool { return c.Stock > 0 }

// Dimensions returns the three sides presented to an opening.
func (c Chair) Dimensions() Dimensions {
	return Dimensions{Width: c.Width, Height: c.Height, Depth: c.Depth}
}

type Dimensions struct {
	Width, Height, Depth int64
}

// Orientations lists the six (doorWidth, doorHeight) minimums under which an item fits.
func (d Dimensions) Orientations() [6][2]int64 {
	w, h, dp := d.Width, d.Height, d.Depth
	return [6][2]int64{
		{w, h}, {w, dp},
		{h, w}, {h, dp},
		{dp, w}, {dp, h},
	}
}

// FitsThrough reports whether the item passes an opening of the given size in any orientation.
func (d Dimensions) FitsThrough(doorWidth, doorHeight int64) bool {
	for _, o := range d.Orientations() {
		if doorWidth >= o[0] && doorHeight >= o[1] {
			return true
		}
	}
	return false
}

// SplitFeatures splits a stored comma-joined tag list.
func SplitFeatures(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

type ChairsPage struct {
	Count int64
	Items []Chair
}
