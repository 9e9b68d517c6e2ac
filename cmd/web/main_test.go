package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	addFlags(cmd)
	bindConfig(v, cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return v
}

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("WEB_ADDR", "")

	v := newTestConfig(t)

	assert.Equal(t, "http://localhost:8080", v.GetString("backend_url"))
	assert.Equal(t, ":3000", v.GetString("web_addr"))
	assert.Equal(t, []string{"*"}, v.GetStringSlice("allowed_origins"))
}

func TestConfig_EnvOverridesDefault(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://api:9000")
	t.Setenv("WEB_ADDR", ":4000")

	v := newTestConfig(t)

	assert.Equal(t, "http://api:9000", v.GetString("backend_url"))
	assert.Equal(t, ":4000", v.GetString("web_addr"))
}

func TestConfig_FlagOverridesEnv(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://api:9000")

	v := newTestConfig(t, "--backend-url", "http://flag:1234")

	assert.Equal(t, "http://flag:1234", v.GetString("backend_url"))
}
