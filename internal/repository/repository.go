package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"learninghub/server/internal/model"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateUser inserts the user and returns it with its generated ID. A
// duplicate username or email surfaces as a unique-violation error from
// the store; callers treat that as the conflict, not the pre-check.
func (s *Store) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE username = $1
	`, username)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	return user, err
}

func (s *Store) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
	`, username, email).Scan(&exists)
	return exists, err
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) CreateCourse(ctx context.Context, course model.Course) (model.Course, error) {
	course.ID = uuid.NewString()
	course.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO courses (id, course_id, owner_username, title, description, duration_hours, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, course.ID, course.CourseID, course.OwnerUsername, course.Title, course.Description, course.DurationHours, course.CreatedAt)
	if err != nil {
		return model.Course{}, err
	}
	return course, nil
}

func (s *Store) CourseExists(ctx context.Context, courseID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM courses WHERE course_id = $1)
	`, courseID).Scan(&exists)
	return exists, err
}

func (s *Store) ListCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, course_id, owner_username, title, description, duration_hours, created_at
		FROM courses
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var course model.Course
		if err := rows.Scan(&course.ID, &course.CourseID, &course.OwnerUsername, &course.Title, &course.Description, &course.DurationHours, &course.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (s *Store) CreateCourseContent(ctx context.Context, content model.CourseContent) (model.CourseContent, error) {
	content.ID = uuid.NewString()
	content.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO course_contents (id, course_id, module, content, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, content.ID, content.CourseID, content.Module, content.Content, content.Link, content.CreatedAt)
	if err != nil {
		return model.CourseContent{}, err
	}
	return content, nil
}

func (s *Store) ListCourseContent(ctx context.Context, courseID string) ([]model.CourseContent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, course_id, module, content, link, created_at
		FROM course_contents
		WHERE course_id = $1
		ORDER BY created_at
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []model.CourseContent
	for rows.Next() {
		var content model.CourseContent
		if err := rows.Scan(&content.ID, &content.CourseID, &content.Module, &content.Content, &content.Link, &content.CreatedAt); err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}
