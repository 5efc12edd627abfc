package itf

import (
	"context"
	"net"
	"os"
	"strings"
	"testing"
	"time"
)

// RequirePostgres skips the test when Postgres is not reachable, except in CI
// where an unreachable database is a failure.
func RequirePostgres(tb testing.TB) {
	tb.Helper()

	if CanDialPostgres() {
		return
	}
	if strings.TrimSpace(os.Getenv("CI")) != "" || strings.EqualFold(strings.TrimSpace(os.Getenv("GITHUB_ACTIONS")), "true") {
		tb.Fatalf("postgres is not reachable (DB_HOST/DB_PORT)")
	}
	tb.Skip("postgres is not reachable; skipping integration test")
}

func CanDialPostgres() bool {
	c := dbOptions()
	addr := net.JoinHostPort(c.Host, c.Port)

	dialer := &net.Dialer{Timeout: 250 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
