// File: internal/identity/service.go
package identity

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"learnease_backend/internal/config"
	"learnease_backend/internal/email"
)

// Account is the provider's view of a user, reduced to the fields the
// orchestrators consume.
type Account struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Provider is the identity-provider surface the orchestrators depend on.
// The Firebase implementation below is the only production implementation;
// tests substitute fakes.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (*Account, error)
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	DeleteAccount(ctx context.Context, uid string) error
	SendVerificationEmail(ctx context.Context, toName, toEmail string) error
	Reload(ctx context.Context, uid string) (*Account, error)
	UpdatePassword(ctx context.Context, uid, newPassword string) error
}

// Service implements Provider against the Firebase Admin SDK.
type Service struct {
	authClient  *auth.Client
	emailSvc    email.Service
	continueURL string
	logger      *zap.Logger
}

var _ Provider = (*Service)(nil)

// NewService initializes the Firebase Admin SDK and creates a new identity service.
func NewService(cfg *config.Config, emailSvc email.Service, logger *zap.Logger) (*Service, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error

	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		// Let the SDK infer the project from the credentials file.
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &Service{
		authClient:  authClient,
		emailSvc:    emailSvc,
		continueURL: cfg.VerificationContinueURL,
		logger:      logger,
	}, nil
}

// CreateAccount provisions a provider account for the given credentials.
func (s *Service) CreateAccount(ctx context.Context, emailAddr, password string) (*Account, error) {
	params := (&auth.UserToCreate{}).
		Email(emailAddr).
		Password(password).
		EmailVerified(false)

	record, err := s.authClient.CreateUser(ctx, params)
	if err != nil {
		s.logger.Warn("Firebase CreateUser failed", zap.Error(err), zap.String("email", emailAddr))
		return nil, classify(err)
	}

	s.logger.Info("Identity account created", zap.String("uid", record.UID))
	return toAccount(record), nil
}

// AccountByEmail looks up a provider account. Used as the existence probe
// when CreateAccount reports the email as taken.
func (s *Service) AccountByEmail(ctx context.Context, emailAddr string) (*Account, error) {
	record, err := s.authClient.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, classify(err)
	}
	return toAccount(record), nil
}

// DeleteAccount removes a provider account. This is the signup rollback
// primitive: a registration failure must not leave an identity account
// behind without a matching application record.
func (s *Service) DeleteAccount(ctx context.Context, uid string) error {
	if err := s.authClient.DeleteUser(ctx, uid); err != nil {
		s.logger.Error("Failed to delete identity account", zap.Error(err), zap.String("uid", uid))
		return classify(err)
	}
	s.logger.Info("Identity account deleted", zap.String("uid", uid))
	return nil
}

// SendVerificationEmail generates a Firebase verification link and dispatches
// it through the email service. The send itself is asynchronous.
func (s *Service) SendVerificationEmail(ctx context.Context, toName, toEmail string) error {
	settings := &auth.ActionCodeSettings{URL: s.continueURL}
	link, err := s.authClient.EmailVerificationLinkWithSettings(ctx, toEmail, settings)
	if err != nil {
		s.logger.Warn("Failed to generate email verification link", zap.Error(err), zap.String("email", toEmail))
		return classify(err)
	}

	s.emailSvc.SendMessages(&email.Message{
		ToName:      toName,
		ToAddress:   toEmail,
		Subject:     "Verify your LearnEase email address",
		TextContent: fmt.Sprintf("Welcome to LearnEase!\n\nPlease verify your email address by opening this link:\n%s\n", link),
		HTMLContent: fmt.Sprintf(`<p>Welcome to LearnEase!</p><p>Please <a href="%s">verify your email address</a> to continue.</p>`, link),
	})
	return nil
}

// Reload fetches a fresh view of the account, refreshing EmailVerified.
func (s *Service) Reload(ctx context.Context, uid string) (*Account, error) {
	record, err := s.authClient.GetUser(ctx, uid)
	if err != nil {
		return nil, classify(err)
	}
	return toAccount(record), nil
}

// UpdatePassword sets a new password on the provider account. Used by the
// reset-password flow to keep both credential stores in sync.
func (s *Service) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	params := (&auth.UserToUpdate{}).Password(newPassword)
	if _, err := s.authClient.UpdateUser(ctx, uid, params); err != nil {
		s.logger.Error("Failed to update identity account password", zap.Error(err), zap.String("uid", uid))
		return classify(err)
	}
	return nil
}

func toAccount(record *auth.UserRecord) *Account {
	return &Account{
		UID:           record.UID,
		Email:         record.Email,
		EmailVerified: record.EmailVerified,
	}
}

// classify maps Firebase Admin SDK errors onto the stable provider error kinds.
// The SDK validates email and password shape locally and returns plain errors
// for those, so the message sniffing below is unavoidable.
func classify(err error) error {
	switch {
	case auth.IsEmailAlreadyExists(err):
		return &ProviderError{Kind: KindEmailAlreadyInUse, Err: err}
	case auth.IsUserNotFound(err):
		return &ProviderError{Kind: KindNotFound, Err: err}
	case strings.Contains(err.Error(), "password must be a string at least"):
		return &ProviderError{Kind: KindWeakPassword, Err: err}
	case strings.Contains(err.Error(), "malformed email"):
		return &ProviderError{Kind: KindInvalidEmail, Err: err}
	default:
		return &ProviderError{Kind: KindUnknown, Err: err}
	}
}
