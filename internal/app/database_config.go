package app

import (
	"strings"

	"github.com/charlesng35/boardsync/internal/database"
)

// ConnectionConfig converts DatabaseConfig into the options understood by database.Open.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	dbCfg := database.Config{
		Driver:  strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:    strings.TrimSpace(c.Path),
		DSN:     strings.TrimSpace(c.DSN),
		Options: c.Options,
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		applyAuth(&dbCfg, c.Postgres)
	case "mysql":
		applyAuth(&dbCfg, c.MySQL)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func applyAuth(dbCfg *database.Config, auth DBAuthConfig) {
	dbCfg.Host = strings.TrimSpace(auth.Host)
	dbCfg.Port = auth.Port
	dbCfg.Name = strings.TrimSpace(auth.Database)
	dbCfg.User = strings.TrimSpace(auth.Username)
	dbCfg.Password = strings.TrimSpace(auth.Password)
}
