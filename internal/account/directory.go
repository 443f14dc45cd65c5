// File: internal/account/directory.go
package account

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"learnease_backend/internal/common"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

// Presence reports which account stores hold a given email. The two stores
// share one email namespace; the directory is the single place that
// cross-store rule is enforced.
type Presence struct {
	InStudent bool `json:"inStudent"`
	InTeacher bool `json:"inTeacher"`
}

// Exists is true when either store holds the email.
func (p Presence) Exists() bool {
	return p.InStudent || p.InTeacher
}

// Role resolves the presence to a single role. Teacher takes precedence when
// both flags are true; that state should not normally occur, but the
// tie-break must be deterministic.
func (p Presence) Role() string {
	if p.InTeacher {
		return common.RoleTeacher
	}
	if p.InStudent {
		return common.RoleStudent
	}
	return ""
}

// Directory answers role-tagged email lookups across both account stores.
type Directory struct {
	students student.Repository
	teachers teacher.Repository
	logger   *zap.Logger
}

// NewDirectory creates an account directory over the two role stores.
func NewDirectory(students student.Repository, teachers teacher.Repository, logger *zap.Logger) *Directory {
	return &Directory{students: students, teachers: teachers, logger: logger}
}

// LookupEmail checks both stores. A NotFound from either store means
// "absent"; any other error makes the whole lookup fail so callers can fall
// back to sequential login probing.
func (d *Directory) LookupEmail(ctx context.Context, email string) (Presence, error) {
	var p Presence

	if _, err := d.teachers.FindByEmail(ctx, email); err != nil {
		if !isNotFound(err) {
			d.logger.Warn("Directory teacher lookup failed", zap.Error(err), zap.String("email", email))
			return Presence{}, err
		}
	} else {
		p.InTeacher = true
	}

	if _, err := d.students.FindByEmail(ctx, email); err != nil {
		if !isNotFound(err) {
			d.logger.Warn("Directory student lookup failed", zap.Error(err), zap.String("email", email))
			return Presence{}, err
		}
	} else {
		p.InStudent = true
	}

	return p, nil
}

func isNotFound(err error) bool {
	if apiErr, ok := common.IsAPIError(err); ok {
		return apiErr.StatusCode == common.ErrNotFound.StatusCode
	}
	return errors.Is(err, common.ErrNotFound)
}
