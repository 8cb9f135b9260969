package main

import (
	"bytes"
	"chat-relay/repositories"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	// Given a server database with two users, one online
	repo, err := repositories.NewServerRepository(db, slog.Default())
	req.NoError(err)
	req.NoError(repo.UserLogin("alice", "10.0.0.1", 50001))
	req.NoError(repo.UserLogin("bob", "10.0.0.2", 50002))
	req.NoError(repo.UserLogout("bob"))

	out := &bytes.Buffer{}
	req.NoError(dump(db, "active:", out))

	req.Contains(out.String(), "active:alice")
	req.Contains(out.String(), "10.0.0.1")
	req.NotContains(out.String(), "bob")
}
