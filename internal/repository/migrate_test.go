package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].version)
	assert.Equal(t, "init", migrations[0].name)
	for _, table := range []string{"events", "bookings", "transactions", "tickets", "daily_sequences"} {
		assert.Contains(t, migrations[0].sql, "CREATE TABLE IF NOT EXISTS "+table)
	}
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].version, migrations[i].version)
	}
}
