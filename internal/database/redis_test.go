package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClients_InvalidURL(t *testing.T) {
	_, err := NewRedisClients("not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}
