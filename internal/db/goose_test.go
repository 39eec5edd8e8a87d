package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_AreOrderedAndReversible(t *testing.T) {
	names, err := MigrationFiles()
	require.NoError(t, err)
	require.Len(t, names, 3)

	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}

	for _, name := range names {
		body, err := migrationFS.ReadFile(migrationDir + "/" + name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(body), "-- +goose Up"), name)
		assert.True(t, strings.Contains(string(body), "-- +goose Down"), name)
	}
}

func TestRunMigrations_RequiresConnection(t *testing.T) {
	err := RunMigrations(t.Context(), nil, "status")
	assert.Error(t, err)
}
