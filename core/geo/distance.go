// Package geo ranks responder coordinates by great-circle distance from a
// fixed reference point.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// NearThresholdKm classifies a responder as "near" for presentation. It is a
// display concern only and never excludes a response.
const NearThresholdKm = 5.0

// radians converts degrees to radians.
func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the haversine great-circle distance between a and b in
// kilometers. The result is non-negative and symmetric.
func DistanceKm(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sinLng*sinLng
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Rank describes a responder's distance from the reference point.
type Rank struct {
	DistanceKm float64 `json:"distance_km"`
	Near       bool    `json:"near"`
}

// Ranker computes distances against a fixed reference coordinate, never a
// donor-supplied one.
type Ranker struct {
	reference Point
}

// NewRanker creates a Ranker anchored at the requesting hospital's location.
func NewRanker(reference Point) *Ranker {
	return &Ranker{reference: reference}
}

// Rank returns the distance classification for the given responder position.
func (r *Ranker) Rank(p Point) Rank {
	d := DistanceKm(r.reference, p)
	return Rank{DistanceKm: d, Near: d <= NearThresholdKm}
}
