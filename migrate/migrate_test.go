package migrate_test

import (
	"testing"

	"github.com/programme-lv/autograde/migrate"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	content, err := migrate.FS.ReadFile("00001_init.sql")
	require.NoError(t, err)
	require.Contains(t, string(content), "-- +goose Up")
	require.Contains(t, string(content), "CONSTRAINT courses_enroll_key_key UNIQUE (enroll_key)")

	h1, err := migrate.Hash()
	require.NoError(t, err)
	h2, err := migrate.Hash()
	require.NoError(t, err)
	require.Len(t, h1, 64)
	require.Equal(t, h1, h2)
}

func TestSlugIndexMigration(t *testing.T) {
	content, err := migrate.FS.ReadFile("00002_assignment_slug.sql")
	require.NoError(t, err)
	require.Contains(t, string(content), "lower(replace(title, ' ', '-'))")
	require.Contains(t, string(content), "-- +goose Down")
}
