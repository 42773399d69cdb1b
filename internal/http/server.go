package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"learninghub/server/internal/config"
	"learninghub/server/internal/crypto"
	"learninghub/server/internal/model"
	"learninghub/server/internal/repository"
)

type Server struct {
	cfg   config.Config
	store *repository.Store
}

func NewServer(cfg config.Config, store *repository.Store) *Server {
	return &Server{cfg: cfg, store: store}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/register", s.handleRegister)
	r.Post("/verifyUser", s.handleVerifyUser)
	r.Get("/users", s.handleListUsers)

	r.Post("/courses", s.handleCreateCourse)
	r.Get("/courses", s.handleListCourses)

	r.Post("/course-content", s.handleCreateCourseContent)
	r.Get("/course-content", s.handleListCourseContent)

	return r
}

type registerRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// userSummary is what the API shows for a user. The stored record also
// carries the password hash; it must never appear in a response.
type userSummary struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
}

type registerResponse struct {
	Message string      `json:"message"`
	User    userSummary `json:"user"`
}

func mapUserSummary(user model.User) userSummary {
	return userSummary{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" || req.Role == 0 {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if !req.Role.Valid() {
		writeMessage(w, http.StatusBadRequest, "Role must be 1 (student) or 2 (instructor)")
		return
	}

	exists, err := s.store.UserExists(r.Context(), req.Username, req.Email)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if exists {
		writeMessage(w, http.StatusBadRequest, "User with this username or email already exists")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	user, err := s.store.CreateUser(r.Context(), model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	})
	if err != nil {
		// Two racing registrations can both pass the pre-check; the unique
		// index decides the winner.
		if isUniqueViolation(err) {
			writeMessage(w, http.StatusBadRequest, "User with this username or email already exists")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{
		Message: "Registration successful!",
		User:    mapUserSummary(user),
	})
}

type verifyUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyUserResponse struct {
	Auth     bool        `json:"auth"`
	Username string      `json:"username,omitempty"`
	Role     *model.Role `json:"role,omitempty"`
	Message  string      `json:"message"`
}

func (s *Server) handleVerifyUser(w http.ResponseWriter, r *http.Request) {
	var req verifyUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A negative result, not an error. No identity is issued; the
			// caller keeps whatever it gets back and passes the username
			// explicitly on later requests.
			writeJSON(w, http.StatusOK, verifyUserResponse{Auth: false, Message: "User not found"})
			return
		}
		writeInternalError(w, r, err)
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeJSON(w, http.StatusOK, verifyUserResponse{Auth: false, Message: "Invalid password"})
		return
	}

	writeJSON(w, http.StatusOK, verifyUserResponse{
		Auth:     true,
		Username: user.Username,
		Role:     &user.Role,
		Message:  "Login successful!",
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	summaries := make([]userSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, mapUserSummary(user))
	}
	writeJSON(w, http.StatusOK, summaries)
}

// createCourseRequest keeps the wire names the frontend already sends:
// "coursed" is the human-assigned course identifier and "time" the
// duration in hours.
type createCourseRequest struct {
	Username    string `json:"username"`
	CourseID    string `json:"coursed"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"time"`
}

type courseSummary struct {
	ID            string    `json:"id"`
	OwnerUsername string    `json:"username"`
	CourseID      string    `json:"coursed"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Duration      int       `json:"time"`
	CreatedAt     time.Time `json:"createdAt"`
}

type createCourseResponse struct {
	Message string        `json:"message"`
	Course  courseSummary `json:"course"`
}

func mapCourseSummary(course model.Course) courseSummary {
	return courseSummary{
		ID:            course.ID,
		OwnerUsername: course.OwnerUsername,
		CourseID:      course.CourseID,
		Title:         course.Title,
		Description:   course.Description,
		Duration:      course.DurationHours,
		CreatedAt:     course.CreatedAt,
	}
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.CourseID == "" || req.Title == "" || req.Description == "" || req.Duration == 0 {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	exists, err := s.store.CourseExists(r.Context(), req.CourseID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if exists {
		writeMessage(w, http.StatusBadRequest, "Course ID already exists")
		return
	}

	course, err := s.store.CreateCourse(r.Context(), model.Course{
		CourseID:      req.CourseID,
		OwnerUsername: req.Username,
		Title:         req.Title,
		Description:   req.Description,
		DurationHours: req.Duration,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeMessage(w, http.StatusBadRequest, "Course ID already exists")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createCourseResponse{
		Message: "Course added successfully!",
		Course:  mapCourseSummary(course),
	})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	// Callers pass ?username=..., but the listing is unfiltered and returns
	// every course. TODO: confirm with the frontend owners whether /courses
	// should be scoped to the owner; the My Courses page expects that today.
	courses, err := s.store.ListCourses(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	summaries := make([]courseSummary, 0, len(courses))
	for _, course := range courses {
		summaries = append(summaries, mapCourseSummary(course))
	}
	writeJSON(w, http.StatusOK, summaries)
}

type createContentRequest struct {
	CourseID string  `json:"courseId"`
	Module   int     `json:"module"`
	Content  string  `json:"content"`
	Link     *string `json:"link"`
}

type contentSummary struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	Module    int       `json:"module"`
	Content   string    `json:"content"`
	Link      *string   `json:"link,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type createContentResponse struct {
	Message string         `json:"message"`
	Data    contentSummary `json:"data"`
}

func mapContentSummary(content model.CourseContent) contentSummary {
	return contentSummary{
		ID:        content.ID,
		CourseID:  content.CourseID,
		Module:    content.Module,
		Content:   content.Content,
		Link:      content.Link,
		CreatedAt: content.CreatedAt,
	}
}

func (s *Server) handleCreateCourseContent(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CourseID == "" || req.Module == 0 || req.Content == "" {
		writeMessage(w, http.StatusBadRequest, "Course ID, Module, and Content are required")
		return
	}

	content, err := s.store.CreateCourseContent(r.Context(), model.CourseContent{
		CourseID: req.CourseID,
		Module:   req.Module,
		Content:  req.Content,
		Link:     req.Link,
	})
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createContentResponse{
		Message: "Course content added successfully!",
		Data:    mapContentSummary(content),
	})
}

func (s *Server) handleListCourseContent(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		writeMessage(w, http.StatusBadRequest, "Course ID is required")
		return
	}

	contents, err := s.store.ListCourseContent(r.Context(), courseID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	summaries := make([]contentSummary, 0, len(contents))
	for _, content := range contents {
		summaries = append(summaries, mapContentSummary(content))
	}
	writeJSON(w, http.StatusOK, summaries)
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
