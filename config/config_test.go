package config

import (
	"testing"

	"github.com/pelletier/go-toml"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	require.Equal(t, DefaultDataDir, c.DataDir)
	require.Equal(t, BackendBolt, c.Backend)
	require.NoError(t, c.Validate())
}

func TestConfigValidateRejectsUnknownBackend(t *testing.T) {
	c := NewConfig()
	c.Backend = "networked"
	require.Error(t, c.Validate())
}

func TestConfigRoundTripsThroughTOML(t *testing.T) {
	c := NewConfig()
	c.DataDir = "/var/lib/daf"
	c.Registries = []Registry{{Name: "stats", Path: "/opt/daf/plugins/stats.so"}}

	data, err := toml.Marshal(*c)
	require.NoError(t, err)

	var out Config
	require.NoError(t, toml.Unmarshal(data, &out))
	require.Equal(t, c.DataDir, out.DataDir)
	require.Equal(t, c.Backend, out.Backend)
	require.Equal(t, c.Registries, out.Registries)
}
