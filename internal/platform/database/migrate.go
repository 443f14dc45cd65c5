// File: internal/platform/database/migrate.go
package database

import (
	"gorm.io/gorm"

	"learnease_backend/internal/auth"
	"learnease_backend/internal/help"
	"learnease_backend/internal/quiz"
	"learnease_backend/internal/session"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

// AutoMigrate creates or updates the schema for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&student.Student{},
		&teacher.Teacher{},
		&session.Record{},
		&auth.ResetCode{},
		&quiz.Submission{},
		&help.Article{},
	)
}
