// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"learnease_backend/internal/account"
	"learnease_backend/internal/app"
	"learnease_backend/internal/auth"
	"learnease_backend/internal/chat"
	"learnease_backend/internal/config"
	"learnease_backend/internal/email"
	"learnease_backend/internal/help"
	"learnease_backend/internal/identity"
	"learnease_backend/internal/jobs"
	"learnease_backend/internal/platform/logger"
	"learnease_backend/internal/quiz"
	"learnease_backend/internal/session"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		provideDatabase,
		provideESClient,
		provideCleanup,

		// Email + Identity Provider
		email.NewService,
		identity.NewService,
		wire.Bind(new(identity.Provider), new(*identity.Service)),

		// Account Stores + Directory
		student.NewGORMRepository,
		teacher.NewGORMRepository,
		account.NewDirectory,

		// Sessions + Tokens
		session.NewGORMStore,
		wire.Bind(new(session.Store), new(*session.GORMStore)),
		auth.NewJWTService,

		// Quiz (also feeds post-login routing)
		quiz.NewRepository,
		quiz.NewService,
		wire.Bind(new(auth.QuizStatusService), new(*quiz.Service)),
		quiz.NewHandler,

		// Auth Orchestrators
		auth.NewPostLoginRouter,
		auth.NewSignupService,
		auth.NewLoginService,
		auth.NewResetCodeRepository,
		auth.NewPasswordResetService,
		auth.NewHandler,

		// Supporting Features
		chat.NewHandler,
		help.NewRepository,
		help.NewService,
		help.NewHandler,
		jobs.NewSessionCleanupJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
