package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/honeywatch/console/internal/config"
)

// ApplicationName is reported to PostgreSQL for every connection.
const ApplicationName = "honeywatch-console"

// BuildConnString builds a PostgreSQL connection URL from config. User and
// password are escaped; an empty password is omitted.
func BuildConnString(cfg config.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("application_name", ApplicationName)
	u.RawQuery = q.Encode()

	return u.String()
}
