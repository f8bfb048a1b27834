package domain

import (
	"fmt"
	"math"
)

// Bounds is the visible map rectangle, south-west to north-east.
type Bounds struct {
	SouthWestLat float64
	SouthWestLng float64
	NorthEastLat float64
	NorthEastLng float64
}

func (b Bounds) Valid() bool {
	inLat := func(v float64) bool { return v >= -90 && v <= 90 }
	inLng := func(v float64) bool { return v >= -180 && v <= 180 }
	return inLat(b.SouthWestLat) && inLat(b.NorthEastLat) &&
		inLng(b.SouthWestLng) && inLng(b.NorthEastLng) &&
		b.SouthWestLat <= b.NorthEastLat
}

// CacheKey snaps the bounds to a ~100m grid so small pans share a key.
func (b Bounds) CacheKey() string {
	round := func(v float64) float64 { return math.Round(v*1000) / 1000 }
	return fmt.Sprintf("%.3f:%.3f:%.3f:%.3f", round(b.SouthWestLat), round(b.SouthWestLng), round(b.NorthEastLat), round(b.NorthEastLng))
}

// RoomMarker is one room pin on the search map.
type RoomMarker struct {
	RoomID       int64
	Title        string
	Latitude     float64
	Longitude    float64
	WeekPrice    int64
	ThumbnailURL string
}
