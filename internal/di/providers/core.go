// Package providers contains the dependency injection providers for the PMemo server.
package providers

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/pmemoapp/pmemo-server/internal/auth"
	"github.com/pmemoapp/pmemo-server/internal/config"
	"github.com/pmemoapp/pmemo-server/internal/logger"
	"github.com/pmemoapp/pmemo-server/internal/validation"
)

// shutdownTimeout bounds how long graceful shutdown may take.
const shutdownTimeout = 10 * time.Second

// ProvideConfig loads the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// ProvideLogger provides the application logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return logger.New(logger.Config{
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	}), nil
}

// ProvideAuthKey loads or generates the token signing key and stores
// its hex form back into the config.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("load auth key: %w", err)
	}

	cfg.Auth.TokenKey = hex.EncodeToString(key)
	return AuthKey(key), nil
}

// AuthKey is the decoded PASETO symmetric key.
type AuthKey []byte

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	_ = do.MustInvoke[AuthKey](i) // Ensures the key is loaded first

	return auth.NewTokenService(cfg.Auth.TokenKey, cfg.Auth.TokenTTL)
}

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
