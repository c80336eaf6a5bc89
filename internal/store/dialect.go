package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Dialect isolates the SQL differences between the supported backends.
type Dialect interface {
	Name() string
	Placeholder() sq.PlaceholderFormat
	Quote(ident string) string
	// ContainsFold matches rows whose column contains value, ignoring case.
	ContainsFold(column, value string) sq.Sqlizer
	// HasSome matches rows whose array column shares at least one element with values.
	HasSome(column string, values []string) sq.Sqlizer
	// ArrayValue converts a string list into a bindable argument.
	ArrayValue(values []string) driver.Valuer
	// ArrayScanner returns a scan destination that fills dest.
	ArrayScanner(dest *[]string) any
	// Classify maps driver errors onto the domain taxonomy.
	Classify(err error) error
}

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driverName)) {
	case "postgres", "postgresql", "pgx":
		return Postgres{}, nil
	case "mysql", "tidb":
		return MySQL{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}
}

// Postgres targets PostgreSQL through lib/pq. String lists are text[] columns.
type Postgres struct{}

func (Postgres) Name() string                      { return "postgres" }
func (Postgres) Placeholder() sq.PlaceholderFormat { return sq.Dollar }
func (Postgres) Quote(ident string) string         { return sqlutil.QuoteIdentifierANSI(ident) }

func (Postgres) ContainsFold(column, value string) sq.Sqlizer {
	return sq.Expr(column+" ILIKE ?", sqlutil.ContainsPattern(value))
}

func (Postgres) HasSome(column string, values []string) sq.Sqlizer {
	return sq.Expr(column+" && ?", pq.StringArray(values))
}

func (Postgres) ArrayValue(values []string) driver.Valuer {
	if values == nil {
		values = []string{}
	}
	return pq.StringArray(values)
}

func (Postgres) ArrayScanner(dest *[]string) any {
	return (*pq.StringArray)(dest)
}

func (Postgres) Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return apperr.Conflict("A record with this value already exists", err)
		case "23503":
			return apperr.ForeignKey(foreignKeyMessage, err)
		}
	}
	return apperr.Database(err)
}

// MySQL targets MySQL and TiDB through go-sql-driver/mysql. String lists are
// JSON array columns.
type MySQL struct{}

func (MySQL) Name() string                      { return "mysql" }
func (MySQL) Placeholder() sq.PlaceholderFormat { return sq.Question }
func (MySQL) Quote(ident string) string         { return sqlutil.QuoteIdentifier(ident) }

func (MySQL) ContainsFold(column, value string) sq.Sqlizer {
	return sq.Expr("LOWER("+column+") LIKE LOWER(?)", sqlutil.ContainsPattern(value))
}

func (MySQL) HasSome(column string, values []string) sq.Sqlizer {
	return sq.Expr("JSON_OVERLAPS("+column+", CAST(? AS JSON))", jsonArray(values))
}

func (MySQL) ArrayValue(values []string) driver.Valuer {
	return jsonArray(values)
}

func (MySQL) ArrayScanner(dest *[]string) any {
	return (*jsonArray)(dest)
}

func (MySQL) Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return apperr.Conflict("A record with this value already exists", err)
		case 1451, 1452:
			return apperr.ForeignKey(foreignKeyMessage, err)
		}
	}
	return apperr.Database(err)
}

const foreignKeyMessage = "Referenced record does not exist or is still referenced"

// jsonArray stores a string list as a JSON array.
type jsonArray []string

func (a jsonArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *jsonArray) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = []string{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into string list", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*a = out
	return nil
}
