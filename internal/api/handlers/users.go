package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"regexp"
	"sync"

	"github.com/onnwee/optimize-kit/backend/internal/apierr"
	"github.com/onnwee/optimize-kit/backend/internal/logger"
	"github.com/onnwee/optimize-kit/backend/internal/middleware"
	"github.com/onnwee/optimize-kit/backend/internal/respond"
)

const maxNameLength = 100

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is a directory entry.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Directory is an in-memory user list safe for concurrent use.
type Directory struct {
	mu    sync.RWMutex
	users []User
}

// NewDirectory returns a directory seeded with users.
func NewDirectory(users ...User) *Directory {
	return &Directory{users: append([]User(nil), users...)}
}

// DemoDirectory returns the directory served by the demo API.
func DemoDirectory() *Directory {
	return NewDirectory(
		User{ID: 1, Name: "John Doe", Email: "john@example.com"},
		User{ID: 2, Name: "Jane Smith", Email: "jane@example.com"},
		User{ID: 3, Name: "Bob Johnson", Email: "bob@example.com"},
	)
}

// List handles GET /api/users.
func (d *Directory) List(w http.ResponseWriter, r *http.Request) {
	d.mu.RLock()
	users := append([]User(nil), d.users...)
	d.mu.RUnlock()

	_ = respond.JSON(w, respond.Options{
		Data: users,
		Meta: map[string]any{"total": len(users), "page": 1},
	})
}

// CreateUserSchema admits JSON object bodies sent as application/json.
// Field checks are left to Create so it can report which one failed.
var CreateUserSchema = middleware.Schema{
	Body: func(body any) bool {
		_, ok := body.(map[string]any)
		return ok
	},
	Headers: func(h http.Header) bool {
		mt, _, err := mime.ParseMediaType(h.Get("Content-Type"))
		return err == nil && mt == "application/json"
	},
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create handles POST /api/users.
func (d *Directory) Create(w http.ResponseWriter, r *http.Request) error {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apierr.InvalidBody()
	}
	name := middleware.SanitizeString(req.Name, maxNameLength)
	email := middleware.SanitizeString(req.Email, 254)
	if name == "" || email == "" {
		return apierr.BadRequest("Name and email are required")
	}
	if !emailPattern.MatchString(email) {
		return apierr.BadRequest("Invalid email format")
	}

	d.mu.Lock()
	u := User{ID: len(d.users) + 1, Name: name, Email: email}
	d.users = append(d.users, u)
	d.mu.Unlock()

	logger.InfoContext(r.Context(), "user created", "user_id", u.ID)
	return respond.JSON(w, respond.Options{
		Status:  http.StatusCreated,
		Data:    u,
		Message: "User created successfully",
	})
}
