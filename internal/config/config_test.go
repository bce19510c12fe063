package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/letsearn")
	t.Setenv("ADMIN_EMAILS", "op@letsearn.in, second@letsearn.in")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("CASHFREE_APP_ID", "app")
	t.Setenv("CASHFREE_SECRET_KEY", "sk")
	t.Setenv("CASHFREE_WEBHOOK_SECRET", "whs")
	t.Setenv("DOWNLOAD_SIGNING_KEY", "dlkey")
}

func TestLoad(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4001, cfg.Port)
	assert.Equal(t, []string{"op@letsearn.in", "second@letsearn.in"}, cfg.AdminEmails)
	assert.Equal(t, "test", cfg.Cashfree.Mode)
}

func TestLoad_MissingRequired(t *testing.T) {
	keys := []string{
		"JWT_SECRET", "DATABASE_URL", "ADMIN_EMAILS", "ADMIN_PASSWORD",
		"CASHFREE_APP_ID", "CASHFREE_WEBHOOK_SECRET", "DOWNLOAD_SIGNING_KEY",
	}
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	setRequired(t)
	t.Setenv("CASHFREE_MODE", "sandbox")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CASHFREE_MODE")
}
