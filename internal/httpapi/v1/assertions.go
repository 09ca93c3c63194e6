package v1

import (
	"github.com/tinoosan/roombook/internal/session"
	"github.com/tinoosan/roombook/internal/storage/memory"
	"github.com/tinoosan/roombook/internal/storage/postgres"
	"github.com/tinoosan/roombook/internal/storage/sqlite"
)

// Compile-time interface assertions for the stores and session manager against HTTP API interfaces.
var (
	_ SessionResolver = (*session.Manager)(nil)
	_ ReadyChecker    = (*memory.Store)(nil)
	_ ReadyChecker    = (*postgres.Store)(nil)
	_ ReadyChecker    = (*sqlite.Store)(nil)
	_ ReadyChecker    = (*session.RedisStore)(nil)
)
