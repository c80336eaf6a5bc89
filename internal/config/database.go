package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DriverName returns the database/sql driver name for the configured dialect.
func (d *DatabaseConfig) DriverName() string {
	if strings.EqualFold(d.Driver, DriverMySQL) {
		return DriverMySQL
	}
	return DriverPostgres
}

// DSN returns the data source name for the configured driver. An explicit
// connection string wins over the discrete fields.
func (d *DatabaseConfig) DSN() (string, error) {
	if d.DriverName() == DriverMySQL {
		return d.mysqlDSN()
	}
	return d.postgresDSN(), nil
}

// postgresDSN builds a lib/pq URL. A configured connection string is used as is.
func (d *DatabaseConfig) postgresDSN() string {
	if d.ConnectionString != "" {
		return d.ConnectionString
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Database,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else if d.User != "" {
		u.User = url.User(d.User)
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// mysqlDSN builds or normalizes a go-sql-driver/mysql DSN. Timestamps are
// parsed in UTC, and UPDATE reports matched rather than changed rows so an
// update that writes identical values is not mistaken for a missing record.
func (d *DatabaseConfig) mysqlDSN() (string, error) {
	var cfg *mysql.Config
	if d.ConnectionString != "" {
		parsed, err := mysql.ParseDSN(d.ConnectionString)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg = parsed
	} else {
		cfg = mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
		cfg.DBName = d.Database
	}
	if cfg.TLSConfig == "" {
		cfg.TLSConfig = mysqlTLSParam(d.SSLMode)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// mysqlTLSParam maps a PostgreSQL sslmode onto the mysql driver's tls value.
func mysqlTLSParam(sslMode string) string {
	switch sslMode {
	case "disable":
		return "false"
	case "allow", "prefer":
		return "preferred"
	case "require", "verify-ca":
		return "skip-verify"
	case "verify-full":
		return "true"
	default:
		return ""
	}
}

// RedactedDSN is the DSN with the password masked, for logs.
func (d *DatabaseConfig) RedactedDSN() string {
	dsn, err := d.DSN()
	if err != nil {
		return ""
	}
	if d.DriverName() == DriverMySQL {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return ""
		}
		if cfg.Passwd != "" {
			cfg.Passwd = "xxxxx"
		}
		return cfg.FormatDSN()
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return "postgres (key/value dsn)"
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return u.Redacted()
}
