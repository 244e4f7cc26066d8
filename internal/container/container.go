package container

import (
	"github.com/sirupsen/logrus"

	app "repair-bot/internal/application"
	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/port"
)

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
	Verifier          *app.Verifier
}

func New(userRepo port.UserRepository, sessions port.SessionStore, adapters *Adapters, params analysis.Params, log logrus.FieldLogger) *Container {
	userService := app.NewUserService(userRepo)
	verifier := app.NewVerifier(adapters.Verifier, params, log)
	inspectionService := app.NewInspectionService(userService, sessions, verifier, adapters.Highlighter, log)

	return &Container{
		UserService:       userService,
		InspectionService: inspectionService,
		Verifier:          verifier,
	}
}
