package transport

import "github.com/fastygo/regioncheck/domain"

// ValidationQuery holds the optional overrides accepted by the validation
// endpoint. Nil fields keep the configured value.
type ValidationQuery struct {
	LatMin    *float64
	LatMax    *float64
	LngMin    *float64
	LngMax    *float64
	Threshold *float64
	Parallel  *bool
}

// Apply overlays the query onto base.
func (q ValidationQuery) Apply(base domain.Criteria) domain.Criteria {
	out := base
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&out.Region.LatMin, q.LatMin)
	set(&out.Region.LatMax, q.LatMax)
	set(&out.Region.LngMin, q.LngMin)
	set(&out.Region.LngMax, q.LngMax)
	set(&out.Threshold, q.Threshold)
	return out
}

// Overrides reports whether any criteria field was supplied.
func (q ValidationQuery) Overrides() bool {
	return q.LatMin != nil || q.LatMax != nil || q.LngMin != nil || q.LngMax != nil || q.Threshold != nil
}
