package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR targets a running server; an in-process server is started when empty
	ServerAddr    string `envconfig:"E2E_SERVER_ADDR"`
	AdminID       string `envconfig:"E2E_ADMIN_ID" default:"trainer"`
	AdminPassword string `envconfig:"E2E_ADMIN_PASSWORD" default:"E2e-Trainer-Passw0rd"`
	Participants  int    `envconfig:"E2E_PARTICIPANTS" default:"5"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
