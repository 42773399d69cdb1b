package model

import "time"

// Role classifies a user at registration time. It never changes afterwards;
// there is no update path for it.
type Role int16

const (
	RoleStudent    Role = 1
	RoleInstructor Role = 2
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Course is keyed by CourseID, a human-assigned identifier chosen by the
// instructor, distinct from the generated row ID.
type Course struct {
	ID            string
	CourseID      string
	OwnerUsername string
	Title         string
	Description   string
	DurationHours int
	CreatedAt     time.Time
}

// CourseContent references its course by CourseID only; deleting a course
// does not cascade.
type CourseContent struct {
	ID        string
	CourseID  string
	Module    int
	Content   string
	Link      *string
	CreatedAt time.Time
}
