package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"curriculum/internal/shared/config"
	"curriculum/internal/shared/logger"
)

func TestAdvisoryLocker_RequiresTransaction(t *testing.T) {
	_, err := NewAdvisoryLocker().Lock(context.Background(), "org-1:krav maga")
	assert.ErrorIs(t, err, ErrNotInTransaction)
}

func TestAdvisoryKey64_Stable(t *testing.T) {
	a := advisoryKey64(advisoryNamespace, "org-1:krav maga")
	assert.Equal(t, a, advisoryKey64(advisoryNamespace, "org-1:krav maga"))
	assert.NotEqual(t, a, advisoryKey64(advisoryNamespace, "org-2:krav maga"))
}

func TestNew_SelectsBackend(t *testing.T) {
	log := logger.NewNop()

	l, err := New(config.ImportConfig{LockBackend: config.LockBackendMemory}, nil, nil, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryLocker{}, l)

	_, err = New(config.ImportConfig{LockBackend: config.LockBackendRedis}, nil, nil, log)
	assert.Error(t, err)

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	_, err = New(config.ImportConfig{LockBackend: config.LockBackendAdvisory}, gdb, nil, log)
	assert.Error(t, err, "advisory locks need postgres")

	_, err = New(config.ImportConfig{LockBackend: "zookeeper"}, nil, nil, log)
	assert.Error(t, err)
}
