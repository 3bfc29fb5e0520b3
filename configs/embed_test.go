package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/repocks/repocks/internal/config"
)

// The shipped template must parse into the config schema and pass validation.
func TestConfigTemplate_MatchesSchema(t *testing.T) {
	cfg := config.NewConfig()
	require.NoError(t, yaml.Unmarshal([]byte(ConfigTemplate), cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ollama", cfg.Embeddings.Provider)
	assert.Equal(t, "mxbai-embed-large", cfg.Embeddings.Model)
	assert.Equal(t, 1024, cfg.Embeddings.Dimensions)
	assert.NotEmpty(t, cfg.Targets)
}
