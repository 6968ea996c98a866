package domain

import "encoding/json"

// User is a person record fetched from the upstream source. Lat and Lng are
// lifted out of the nested address.geo structure when the record is parsed.
type User struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Address  json.RawMessage `json:"address,omitempty"`
	Lat      float64         `json:"lat"`
	Lng      float64         `json:"lng"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (u User) Coordinates() Coordinates {
	return Coordinates{Lat: u.Lat, Lng: u.Lng}
}
