package jsonplaceholder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/regioncheck/domain"
)

var validate = validator.New()

// coordinate accepts a JSON number or a numeric string.
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	var f float64
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("coordinate %q is not numeric", s)
		}
		f = parsed
	} else if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("coordinate %s is not numeric", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("coordinate %s is not finite", raw)
	}
	*c = coordinate(f)
	return nil
}

type geoRecord struct {
	Lat *coordinate `json:"lat" validate:"required"`
	Lng *coordinate `json:"lng" validate:"required"`
}

type addressRecord struct {
	Geo *geoRecord `json:"geo" validate:"required"`
}

type userRecord struct {
	ID       *int            `json:"id" validate:"required"`
	Name     *string         `json:"name" validate:"required"`
	Username *string         `json:"username" validate:"required"`
	Email    *string         `json:"email" validate:"required"`
	Address  json.RawMessage `json:"address" validate:"required"`
}

type taskRecord struct {
	ID        *int    `json:"id" validate:"required"`
	UserID    *int    `json:"userId" validate:"required"`
	Title     *string `json:"title" validate:"required"`
	Completed *bool   `json:"completed" validate:"required"`
}

// ValidEmail reports whether email is a well-formed address.
func ValidEmail(email string) bool {
	return validate.Var(email, "email") == nil
}

// ParseUser decodes one upstream user record. Coordinates are read from
// address.geo and may be numbers or numeric strings.
func ParseUser(raw []byte) (domain.User, error) {
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.User{}, domain.WrapError(domain.ErrCodeDecode, "decode user", err)
	}
	if err := validate.Struct(rec); err != nil {
		return domain.User{}, domain.WrapError(domain.ErrCodeDecode, "invalid user record", err)
	}

	var addr addressRecord
	if err := json.Unmarshal(rec.Address, &addr); err != nil {
		return domain.User{}, domain.WrapError(domain.ErrCodeDecode, fmt.Sprintf("decode address of user %d", *rec.ID), err)
	}
	if err := validate.Struct(addr); err != nil {
		return domain.User{}, domain.WrapError(domain.ErrCodeDecode, fmt.Sprintf("invalid address of user %d", *rec.ID), err)
	}

	return domain.User{
		ID:       *rec.ID,
		Name:     *rec.Name,
		Username: *rec.Username,
		Email:    *rec.Email,
		Address:  append(json.RawMessage(nil), rec.Address...),
		Lat:      float64(*addr.Geo.Lat),
		Lng:      float64(*addr.Geo.Lng),
	}, nil
}

// ParseUsers decodes a JSON array of user records, keeping their order.
func ParseUsers(raw []byte) ([]domain.User, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, domain.WrapError(domain.ErrCodeDecode, "decode users", err)
	}
	users := make([]domain.User, 0, len(items))
	for i, item := range items {
		u, err := ParseUser(item)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeDecode, fmt.Sprintf("users[%d]", i), err)
		}
		users = append(users, u)
	}
	return users, nil
}

// ParseTask decodes one upstream todo record; the wire field userId becomes
// Task.UserID.
func ParseTask(raw []byte) (domain.Task, error) {
	var rec taskRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Task{}, domain.WrapError(domain.ErrCodeDecode, "decode todo", err)
	}
	if err := validate.Struct(rec); err != nil {
		return domain.Task{}, domain.WrapError(domain.ErrCodeDecode, "invalid todo record", err)
	}
	return domain.Task{
		ID:        *rec.ID,
		UserID:    *rec.UserID,
		Title:     *rec.Title,
		Completed: *rec.Completed,
	}, nil
}

// ParseTasks decodes a JSON array of todo records, keeping their order.
func ParseTasks(raw []byte) ([]domain.Task, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, domain.WrapError(domain.ErrCodeDecode, "decode todos", err)
	}
	tasks := make([]domain.Task, 0, len(items))
	for i, item := range items {
		t, err := ParseTask(item)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeDecode, fmt.Sprintf("todos[%d]", i), err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
