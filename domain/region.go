package domain

import (
	"fmt"
	"math"
)

// Default region bounds and pass threshold.
const (
	DefaultLatMin    = -40.0
	DefaultLatMax    = 5.0
	DefaultLngMin    = 5.0
	DefaultLngMax    = 100.0
	DefaultThreshold = 50.0
)

// Region is a latitude/longitude bounding box. All four edges are inclusive.
type Region struct {
	LatMin float64 `json:"lat_min" yaml:"lat_min"`
	LatMax float64 `json:"lat_max" yaml:"lat_max"`
	LngMin float64 `json:"lng_min" yaml:"lng_min"`
	LngMax float64 `json:"lng_max" yaml:"lng_max"`
}

func DefaultRegion() Region {
	return Region{
		LatMin: DefaultLatMin,
		LatMax: DefaultLatMax,
		LngMin: DefaultLngMin,
		LngMax: DefaultLngMax,
	}
}

// Contains reports whether the point lies inside the box, edges included.
func (r Region) Contains(lat, lng float64) bool {
	return r.LatMin <= lat && lat <= r.LatMax &&
		r.LngMin <= lng && lng <= r.LngMax
}

func (r Region) ContainsUser(u User) bool {
	return r.Contains(u.Lat, u.Lng)
}

// FilterUsers keeps the users inside the region, in their original order.
func FilterUsers(users []User, region Region) []User {
	inRegion := make([]User, 0, len(users))
	for _, u := range users {
		if region.ContainsUser(u) {
			inRegion = append(inRegion, u)
		}
	}
	return inRegion
}

// Criteria bundles the region and the completion threshold a run is judged by.
type Criteria struct {
	Region    Region  `json:"region" yaml:"region"`
	Threshold float64 `json:"completion_threshold" yaml:"completion_threshold"`
}

func DefaultCriteria() Criteria {
	return Criteria{
		Region:    DefaultRegion(),
		Threshold: DefaultThreshold,
	}
}

// Passes reports whether a completion percentage clears the threshold.
// The comparison is strict: a percentage equal to the threshold fails.
func (c Criteria) Passes(percentage float64) bool {
	return percentage > c.Threshold
}

func (c Criteria) Validate() error {
	r := c.Region
	for _, v := range []float64{r.LatMin, r.LatMax, r.LngMin, r.LngMax, c.Threshold} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewError(ErrCodeInvalid, "criteria values must be finite")
		}
	}
	if r.LatMin > r.LatMax {
		return NewError(ErrCodeInvalid, fmt.Sprintf("lat_min %g is greater than lat_max %g", r.LatMin, r.LatMax))
	}
	if r.LngMin > r.LngMax {
		return NewError(ErrCodeInvalid, fmt.Sprintf("lng_min %g is greater than lng_max %g", r.LngMin, r.LngMax))
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return NewError(ErrCodeInvalid, fmt.Sprintf("completion threshold %g is outside [0, 100]", c.Threshold))
	}
	return nil
}
