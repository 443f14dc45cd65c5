package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"learnease_backend/internal/common"
	"learnease_backend/internal/identity"
	"learnease_backend/internal/session"
	"learnease_backend/internal/shared"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

// fakeStudentRepo is an in-memory student.Repository.
type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[string]*student.Student // by email
	failWith error                       // non-NotFound error injected into lookups
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*student.Student)}
}

func (r *fakeStudentRepo) add(s *student.Student) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[s.Email] = s
}

func (r *fakeStudentRepo) Create(ctx context.Context, s *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.Email]; ok {
		return common.ErrConflict.WithDetails("A student with this email already exists.")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.students[s.Email] = s
	return nil
}

func (r *fakeStudentRepo) FindByEmail(ctx context.Context, email string) (*student.Student, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.students[email]; ok {
		return s, nil
	}
	return nil, common.ErrNotFound.WithDetails("Student not found with this email.")
}

func (r *fakeStudentRepo) FindByUsername(ctx context.Context, username string) (*student.Student, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.Username == username {
			return s, nil
		}
	}
	return nil, common.ErrNotFound.WithDetails("Student not found with this username.")
}

func (r *fakeStudentRepo) FindByID(ctx context.Context, id uuid.UUID) (*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, common.ErrNotFound.WithDetails("Student not found with this ID.")
}

func (r *fakeStudentRepo) Update(ctx context.Context, s *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[s.Email] = s
	return nil
}

// fakeTeacherRepo is an in-memory teacher.Repository.
type fakeTeacherRepo struct {
	mu          sync.Mutex
	teachers    map[string]*teacher.Teacher // by email
	failWith    error
	patchedUIDs map[uuid.UUID]string
}

func newFakeTeacherRepo() *fakeTeacherRepo {
	return &fakeTeacherRepo{
		teachers:    make(map[string]*teacher.Teacher),
		patchedUIDs: make(map[uuid.UUID]string),
	}
}

func (r *fakeTeacherRepo) add(t *teacher.Teacher) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teachers[t.Email] = t
}

func (r *fakeTeacherRepo) Create(ctx context.Context, t *teacher.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teachers[t.Email]; ok {
		return common.ErrConflict.WithDetails("A teacher with this email already exists.")
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.teachers[t.Email] = t
	return nil
}

func (r *fakeTeacherRepo) FindByEmail(ctx context.Context, email string) (*teacher.Teacher, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.teachers[email]; ok {
		return t, nil
	}
	return nil, common.ErrNotFound.WithDetails("Teacher not found with this email.")
}

func (r *fakeTeacherRepo) FindByID(ctx context.Context, id uuid.UUID) (*teacher.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teachers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, common.ErrNotFound.WithDetails("Teacher not found with this ID.")
}

func (r *fakeTeacherRepo) Update(ctx context.Context, t *teacher.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teachers[t.Email] = t
	return nil
}

func (r *fakeTeacherRepo) PatchFirebaseUID(ctx context.Context, id uuid.UUID, firebaseUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patchedUIDs[id] = firebaseUID
	for _, t := range r.teachers {
		if t.ID == id {
			uid := firebaseUID
			t.FirebaseUID = &uid
			return nil
		}
	}
	return common.ErrNotFound.WithDetails("Teacher not found with this ID.")
}

// fakeProvider is a scriptable identity.Provider that records calls.
type fakeProvider struct {
	mu sync.Mutex

	createErr     error
	existing      map[string]*identity.Account // by email
	reloaded      map[string]*identity.Account // by uid
	deleteErr     error
	sendErr       error
	updatePassErr error

	createdEmails []string
	deletedUIDs   []string
	sentEmails    []string
	passwordsSet  map[string]string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		existing:     make(map[string]*identity.Account),
		reloaded:     make(map[string]*identity.Account),
		passwordsSet: make(map[string]string),
	}
}

func (p *fakeProvider) CreateAccount(ctx context.Context, email, password string) (*identity.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	if _, ok := p.existing[email]; ok {
		return nil, &identity.ProviderError{Kind: identity.KindEmailAlreadyInUse}
	}
	acct := &identity.Account{UID: "uid-" + email, Email: email}
	p.createdEmails = append(p.createdEmails, email)
	return acct, nil
}

func (p *fakeProvider) AccountByEmail(ctx context.Context, email string) (*identity.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acct, ok := p.existing[email]; ok {
		return acct, nil
	}
	return nil, &identity.ProviderError{Kind: identity.KindNotFound}
}

func (p *fakeProvider) DeleteAccount(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deletedUIDs = append(p.deletedUIDs, uid)
	return nil
}

func (p *fakeProvider) SendVerificationEmail(ctx context.Context, toName, toEmail string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	p.sentEmails = append(p.sentEmails, toEmail)
	return nil
}

func (p *fakeProvider) Reload(ctx context.Context, uid string) (*identity.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acct, ok := p.reloaded[uid]; ok {
		return acct, nil
	}
	return nil, &identity.ProviderError{Kind: identity.KindNotFound}
}

func (p *fakeProvider) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.updatePassErr != nil {
		return p.updatePassErr
	}
	p.passwordsSet[uid] = newPassword
	return nil
}

// fakeSessionStore is an in-memory session.Store.
type fakeSessionStore struct {
	mu        sync.Mutex
	permanent map[uuid.UUID]session.Session
	temporary map[uuid.UUID]session.Session
	saveErr   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		permanent: make(map[uuid.UUID]session.Session),
		temporary: make(map[uuid.UUID]session.Session),
	}
}

func (f *fakeSessionStore) Save(ctx context.Context, s session.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.permanent[s.AccountID] = s
	return nil
}

func (f *fakeSessionStore) SaveTemporary(ctx context.Context, s session.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.temporary[s.AccountID] = s
	return nil
}

func (f *fakeSessionStore) Load(ctx context.Context, accountID uuid.UUID) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.permanent[accountID]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSessionStore) Clear(ctx context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.permanent, accountID)
	delete(f.temporary, accountID)
	return nil
}

func (f *fakeSessionStore) PromoteTemporary(ctx context.Context, accountID uuid.UUID) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.temporary[accountID]
	delete(f.temporary, accountID)
	if !ok {
		return nil, common.ErrNotFound.WithDetails("No provisional session to promote.")
	}
	f.permanent[accountID] = s
	return &s, nil
}

// fakeTokens is a deterministic shared.TokenService.
type fakeTokens struct {
	failAccess bool
}

func (f *fakeTokens) GenerateAccessToken(acct shared.AccountDataForToken) (string, time.Time, error) {
	if f.failAccess {
		return "", time.Time{}, context.DeadlineExceeded
	}
	return "access-" + acct.GetID().String(), time.Now().Add(time.Hour), nil
}

func (f *fakeTokens) GenerateRefreshToken(acct shared.AccountDataForToken) (string, time.Time, error) {
	return "refresh-" + acct.GetID().String(), time.Now().Add(24 * time.Hour), nil
}

func (f *fakeTokens) ValidateToken(tokenString string) (*shared.Claims, error) {
	return nil, context.DeadlineExceeded
}

func (f *fakeTokens) ParseRefreshToken(refreshTokenString string) (*shared.Claims, error) {
	return nil, context.DeadlineExceeded
}

// fakeQuiz is a scriptable QuizStatusService.
type fakeQuiz struct {
	completed bool
	err       error
}

func (f *fakeQuiz) Completed(ctx context.Context, studentID uuid.UUID) (bool, error) {
	return f.completed, f.err
}
