// File: internal/student/model.go
package student

import (
	"time"

	"github.com/google/uuid"

	"learnease_backend/internal/common"
)

// Student is the application-owned student account record. It mirrors the
// identity-provider account (same email) but carries the platform profile.
type Student struct {
	common.BaseModel
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	Username     string  `gorm:"type:varchar(100);not null;uniqueIndex"`
	FullName     string  `gorm:"type:varchar(255);not null"`
	PasswordHash string  `gorm:"type:varchar(255);not null"`
	FirebaseUID  *string `gorm:"type:varchar(255);uniqueIndex"`
	LastLoginAt  *time.Time
}

func (Student) TableName() string {
	return "students"
}

func (s *Student) GetID() uuid.UUID {
	return s.ID
}

func (s *Student) GetEmail() string {
	return s.Email
}

func (s *Student) GetRole() string {
	return common.RoleStudent
}

// Response is the student shape sent in API responses.
type Response struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

func ToResponse(s *Student) Response {
	return Response{
		ID:        s.ID,
		Email:     s.Email,
		Username:  s.Username,
		FullName:  s.FullName,
		CreatedAt: s.CreatedAt,
	}
}
