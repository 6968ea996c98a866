package fixtures

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
)

// MockUser returns a user record in the upstream wire shape. Coordinates are
// encoded as strings, the way the public source sends them.
func MockUser(id int, lat, lng float64) map[string]any {
	return map[string]any{
		"id":       id,
		"name":     fmt.Sprintf("Test User %d", id),
		"username": fmt.Sprintf("testuser%d", id),
		"email":    fmt.Sprintf("testuser%d@example.com", id),
		"address": map[string]any{
			"street":  "Test Street",
			"suite":   "Apt. 123",
			"city":    "Test City",
			"zipcode": "12345",
			"geo": map[string]any{
				"lat": strconv.FormatFloat(lat, 'f', -1, 64),
				"lng": strconv.FormatFloat(lng, 'f', -1, 64),
			},
		},
		"phone":   "123-456-7890",
		"website": "example.com",
		"company": map[string]any{
			"name":        "Test Company",
			"catchPhrase": "Test catchphrase",
			"bs":          "test business",
		},
	}
}

// MockTodos returns total todo records for the user, the first completed of
// which are marked done.
func MockTodos(userID, total, completed int) []map[string]any {
	todos := make([]map[string]any, 0, total)
	for i := 0; i < total; i++ {
		todos = append(todos, map[string]any{
			"userId":    userID,
			"id":        i + 1 + userID*100,
			"title":     fmt.Sprintf("Todo item %d for user %d", i+1, userID),
			"completed": i < completed,
		})
	}
	return todos
}

// Upstream is a fake of the public REST source serving /users and /todos.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	users    []map[string]any
	todos    []map[string]any
	override map[string]http.HandlerFunc
	requests atomic.Int64
}

// NewUpstream starts a fake upstream. Close it when done.
func NewUpstream(users []map[string]any, todos []map[string]any) *Upstream {
	u := &Upstream{
		users:    users,
		todos:    todos,
		override: make(map[string]http.HandlerFunc),
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	return u
}

// Handle replaces the handler for a path such as "/users".
func (u *Upstream) Handle(path string, fn http.HandlerFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.override[path] = fn
}

// Requests returns how many requests the server has received.
func (u *Upstream) Requests() int64 {
	return u.requests.Load()
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	u.requests.Add(1)

	u.mu.Lock()
	fn, ok := u.override[r.URL.Path]
	u.mu.Unlock()
	if ok {
		fn(w, r)
		return
	}

	switch r.URL.Path {
	case "/users":
		writeJSON(w, u.users)
	case "/todos":
		raw := r.URL.Query().Get("userId")
		if raw == "" {
			writeJSON(w, u.todos)
			return
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, []map[string]any{})
			return
		}
		filtered := []map[string]any{}
		for _, todo := range u.todos {
			if todo["userId"] == id {
				filtered = append(filtered, todo)
			}
		}
		writeJSON(w, filtered)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if r, ok := v.([]map[string]any); ok && r == nil {
		v = []map[string]any{}
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Scenario returns three users, two of them in the default region: user 1 at
// 75% completion, user 2 outside the region, user 3 at 25% completion.
func Scenario() (users []map[string]any, todos []map[string]any) {
	users = []map[string]any{
		MockUser(1, -10, 50),
		MockUser(2, 40, -70),
		MockUser(3, 0, 20),
	}
	todos = append(todos, MockTodos(1, 4, 3)...)
	todos = append(todos, MockTodos(2, 10, 0)...)
	todos = append(todos, MockTodos(3, 4, 1)...)
	return users, todos
}
