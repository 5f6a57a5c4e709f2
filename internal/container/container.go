package container

import (
	"net/http"

	"aqua-vision/config"
	"aqua-vision/internal/api/rest"
	app "aqua-vision/internal/application"
	"aqua-vision/internal/domain/port"
)

type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService
	HTTPHandler     http.Handler
}

func New(cfg *config.Config, userRepo port.UserRepository, analyzer port.ImpurityAnalyzer) (*Container, error) {
	userService := app.NewUserService(userRepo)
	analysisService, err := app.NewAnalysisService(userService, analyzer, app.EncodeOptions{
		Format:      cfg.OutputFormat,
		JPEGQuality: cfg.JPEGQuality,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		UserService:     userService,
		AnalysisService: analysisService,
		HTTPHandler:     rest.NewHandler(analysisService, cfg.MaxUploadBytes),
	}, nil
}
