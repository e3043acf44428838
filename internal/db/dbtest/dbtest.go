// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"schoolhub/internal/config"
	"schoolhub/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var seq atomic.Int64

// Config returns a config pointing at a private in-memory SQLite database.
func Config(t testing.TB) *config.Config {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.FromEnv()
	cfg.DBDriver = "sqlite"
	cfg.DatabaseURL = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))
	cfg.RosterFile = ""
	cfg.TeacherSecurityKey = "TEST-KEY"
	return cfg
}

// New opens, migrates and seeds a fresh database that is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	conn, err := db.Open(Config(t), zap.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}
