package transport

import (
	"encoding/json"

	"github.com/fastygo/regioncheck/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// RunMeta accompanies validation payloads.
type RunMeta struct {
	RunID    string          `json:"run_id"`
	Criteria domain.Criteria `json:"criteria"`
}

// UserView is the public shape of an in-region user.
type UserView struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Coordinates domain.Coordinates `json:"coordinates"`
}

// NewUserViews converts users preserving order; the result is never nil.
func NewUserViews(users []domain.User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, UserView{
			ID:          u.ID,
			Name:        u.Name,
			Username:    u.Username,
			Email:       u.Email,
			Coordinates: u.Coordinates(),
		})
	}
	return out
}

// UserValidation is the verdict for one user looked up by id. InRegion is
// false for users the region filter would have skipped.
type UserValidation struct {
	InRegion bool              `json:"in_region"`
	Result   domain.UserResult `json:"result"`
}
