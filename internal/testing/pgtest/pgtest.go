// Package pgtest runs a throwaway Postgres container for integration tests.
// Packages start one container in TestMain and share it across their tests.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	Image    = "postgres:15-alpine"
	Database = "gacha"
	User     = "gacha"
	Password = "gacha"

	StartupTimeout = 30 * time.Second
)

// Container is a running database, or the reason there is none.
type Container struct {
	URL    string
	Reason string
	stop   func()
}

// Start launches the container. It never fails: when Docker is missing or
// the container does not come up, URL is empty and Reason says why. Call it
// from TestMain after flag.Parse.
func Start(ctx context.Context) (c *Container) {
	c = &Container{stop: func() {}}
	if testing.Short() {
		c.Reason = "short mode"
		return c
	}
	// testcontainers panics when no Docker host can be found
	defer func() {
		if r := recover(); r != nil {
			c.URL, c.Reason = "", fmt.Sprintf("docker unavailable: %v", r)
		}
	}()

	pg, err := postgres.Run(ctx, Image,
		postgres.WithDatabase(Database),
		postgres.WithUsername(User),
		postgres.WithPassword(Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(StartupTimeout)),
	)
	if err != nil {
		c.Reason = err.Error()
		return c
	}
	c.stop = func() {
		if err := pg.Terminate(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "pgtest: terminate container: %v\n", err)
		}
	}

	url, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		c.Reason = err.Error()
		return c
	}
	c.URL = url
	return c
}

// Require returns the connection URL or skips t.
func (c *Container) Require(t testing.TB) string {
	t.Helper()
	if c == nil || c.URL == "" {
		reason := "not started"
		if c != nil {
			reason = c.Reason
		}
		t.Skipf("Skipping integration test: %s", reason)
	}
	return c.URL
}

// Stop terminates the container. Safe on a container that never started.
func (c *Container) Stop() {
	if c != nil {
		c.stop()
	}
}
