package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ParseDurationEnv parses an env value as time.Duration:
// - "10s", "5m" etc. (time.ParseDuration)
// - bare number "10" = seconds (10s)
func ParseDurationEnv(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	// Strip optional surrounding quotes: "10s" or '10s'
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	// Bare number first (e.g. HTTP_READ_TIMEOUT=10) — treat as seconds.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 5m or a number of seconds: %w", err)
	}
	return d, nil
}

// IsPGConstraintViolation reports whether error is a PostgreSQL foreign key (23503)
// or check (23514) violation.
func IsPGConstraintViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23503" || pge.Code == "23514"
	}
	return false
}

// IsMySQLConstraintViolation reports whether error is a MySQL foreign key
// (1452 ER_NO_REFERENCED_ROW_2) or check (3819) violation.
func IsMySQLConstraintViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1452 || me.Number == 3819
	}
	return false
}

// IsSQLiteConstraintViolation reports whether error is a SQLite foreign key or check violation.
func IsSQLiteConstraintViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey || se.ExtendedCode == sqlite3.ErrConstraintCheck
	}
	return false
}

// IsConstraintViolation checks all supported drivers.
func IsConstraintViolation(err error) bool {
	return IsPGConstraintViolation(err) || IsMySQLConstraintViolation(err) || IsSQLiteConstraintViolation(err)
}
