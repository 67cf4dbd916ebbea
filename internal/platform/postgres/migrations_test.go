package postgres

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, name := range files {
		raw, err := fs.ReadFile(migrationsFS, name)
		require.NoError(t, err)
		body := string(raw)
		assert.True(t, strings.Contains(body, "-- +goose Up"), "%s lacks an Up section", name)
		assert.True(t, strings.Contains(body, "-- +goose Down"), "%s lacks a Down section", name)
	}
}

// goose configuration is global, so this test does not run in parallel.
func TestRunMigrationCommand_Unknown(t *testing.T) {
	db, _ := newMock(t)

	err := RunMigrationCommand(context.Background(), db, discardLogger(), "sideways")
	assert.ErrorIs(t, err, ErrUnknownMigrationCommand)
}
