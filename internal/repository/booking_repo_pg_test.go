package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewStore(t *testing.T) {
	pool := &pgxpool.Pool{}
	store := NewStore(pool)
	assert.NotNil(t, store)
}
