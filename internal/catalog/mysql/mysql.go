// Package mysql registers the MySQL catalog backend (go-sql-driver/mysql).
package mysql

import (
	"embed"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/sadopc/bqlab/internal/catalog"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	catalog.Register(Dialect)
}

// Dialect is the MySQL catalog dialect.
var Dialect = catalog.Dialect{
	Name:       "mysql",
	Driver:     "mysql",
	Normalize:  normalizeDSN,
	Migrations: migrations,
}

// normalizeDSN converts a mysql:// URL to go-sql-driver format. DSNs already
// in driver format pass through. parseTime=true is always added so DATETIME
// columns scan into time.Time.
func normalizeDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", err
		}

		user := u.User.Username()
		pass, _ := u.User.Password()

		host := u.Hostname()
		port := u.Port()
		if port == "" {
			port = "3306"
		}

		var userInfo string
		if pass != "" {
			userInfo = fmt.Sprintf("%s:%s@", user, pass)
		} else if user != "" {
			userInfo = user + "@"
		}

		query := u.RawQuery
		if query == "" {
			query = "parseTime=true"
		} else if !strings.Contains(query, "parseTime") {
			query += "&parseTime=true"
		}

		return fmt.Sprintf("%stcp(%s:%s)/%s?%s", userInfo, host, port, strings.TrimPrefix(u.Path, "/"), query), nil
	}

	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}
	return dsn, nil
}
