package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, "grievance-files", cfg.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, 15*time.Minute, cfg.PresignTTL)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.NotEmpty(t, cfg.DatabaseDSN)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"server", "-a", ":9090", "-b", "evidence", "-t", "600"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
	assert.Equal(t, "evidence", cfg.S3Bucket)
	assert.Equal(t, 600*time.Second, cfg.PresignTTL)
	// untouched fields keep defaults
	assert.Equal(t, "us-east-1", cfg.S3Region)
}
