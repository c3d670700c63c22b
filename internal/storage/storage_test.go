package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdblog/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		s, err := New(config.StorageConfig{Driver: "local", LocalDir: t.TempDir()}, config.MinIOConfig{})
		require.NoError(t, err)
		_, ok := s.(*localStorage)
		assert.True(t, ok)
	})

	t.Run("minio requires endpoint", func(t *testing.T) {
		_, err := New(config.StorageConfig{Driver: "minio"}, config.MinIOConfig{})
		assert.EqualError(t, err, "minio endpoint is required")
	})

	t.Run("minio requires credentials", func(t *testing.T) {
		_, err := New(config.StorageConfig{Driver: "minio"}, config.MinIOConfig{Endpoint: "localhost:9000"})
		assert.EqualError(t, err, "minio credentials are required")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := New(config.StorageConfig{Driver: "ftp"}, config.MinIOConfig{})
		assert.Error(t, err)
	})
}
