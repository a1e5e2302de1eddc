// Package autoload initializes the global logger from LOG_* variables on
// import.
package autoload

import (
	"github.com/rs/zerolog/log"
	configx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/config"
	logx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/logger"
)

func init() {
	Load()
}

// Load (re)initializes the global logger from LOG_* variables, including
// those of the .env file set with configx.SetEnvFile.
func Load() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		log.Warn().Err(err).Msg("logger config not loaded, using defaults")
		return
	}
	logx.Init(*cfg)
}
