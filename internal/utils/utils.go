package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParseDurationEnv parses an env value as time.Duration.
// Accepts "10s", "5m" (time.ParseDuration) or a bare number of seconds ("10").
// Surrounding quotes are ignored.
func ParseDurationEnv(s string) (time.Duration, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 5m or a number of seconds: %w", err)
	}
	return d, nil
}

// RedisTarget is the connection info carried by a redis:// or rediss:// URL.
type RedisTarget struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// ParseRedisURL extracts host:port, password, DB and TLS from a redis URL.
func ParseRedisURL(s string) (RedisTarget, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return RedisTarget{}, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return RedisTarget{}, fmt.Errorf("scheme must be redis or rediss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return RedisTarget{}, errors.New("missing host in Redis URL")
	}
	t := RedisTarget{Addr: u.Host, TLS: u.Scheme == "rediss"}
	if u.User != nil {
		t.Password, _ = u.User.Password()
	}
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		db, err := strconv.Atoi(p)
		if err != nil {
			return RedisTarget{}, fmt.Errorf("redis db %q: %w", p, err)
		}
		t.DB = db
	}
	return t, nil
}

// IsPGUniqueViolation reports whether err is a PostgreSQL unique constraint violation (23505).
func IsPGUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}
