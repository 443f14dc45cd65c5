// File: internal/teacher/model.go
package teacher

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"learnease_backend/internal/common"
)

// Teacher is the application-owned instructor account record. Profile
// completion (areas of expertise, CV) happens after signup; the
// InformationGatheringComplete flag drives post-login routing until then.
type Teacher struct {
	common.BaseModel
	Email                        string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName                     string         `gorm:"type:varchar(255);not null"`
	PasswordHash                 string         `gorm:"type:varchar(255);not null"`
	FirebaseUID                  *string        `gorm:"type:varchar(255);uniqueIndex"`
	AreasOfExpertise             pq.StringArray `gorm:"type:text[]"`
	CVURL                        *string        `gorm:"type:text"`
	InformationGatheringComplete bool           `gorm:"not null;default:false"`
	LastLoginAt                  *time.Time
}

func (Teacher) TableName() string {
	return "teachers"
}

func (t *Teacher) GetID() uuid.UUID {
	return t.ID
}

func (t *Teacher) GetEmail() string {
	return t.Email
}

func (t *Teacher) GetRole() string {
	return common.RoleTeacher
}

// Response is the teacher shape sent in API responses.
type Response struct {
	ID                           uuid.UUID `json:"id"`
	Email                        string    `json:"email"`
	FullName                     string    `json:"full_name"`
	FirebaseUID                  *string   `json:"firebase_uid,omitempty"`
	AreasOfExpertise             []string  `json:"areas_of_expertise"`
	CVURL                        *string   `json:"cv_url,omitempty"`
	InformationGatheringComplete bool      `json:"information_gathering_complete"`
	CreatedAt                    time.Time `json:"created_at"`
}

func ToResponse(t *Teacher) Response {
	return Response{
		ID:                           t.ID,
		Email:                        t.Email,
		FullName:                     t.FullName,
		FirebaseUID:                  t.FirebaseUID,
		AreasOfExpertise:             t.AreasOfExpertise,
		CVURL:                        t.CVURL,
		InformationGatheringComplete: t.InformationGatheringComplete,
		CreatedAt:                    t.CreatedAt,
	}
}
