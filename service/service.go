package service

import (
	"versioninfo/config"

	"gorm.io/gorm"
)

// Services is the console's service container
type Services struct {
	Auth *AuthService
}

// NewServices builds the services for db using cfg
func NewServices(db *gorm.DB, cfg *config.Config) *Services {
	return &Services{
		Auth: NewAuthService(db, AuthOptions{
			SessionDuration: cfg.SessionDuration,
			RateLimit:       cfg.LoginRateLimit,
			RateWindow:      cfg.LoginRateWindow,
		}),
	}
}
