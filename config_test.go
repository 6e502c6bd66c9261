package ember

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 5000, c.Port)
	assert.Equal(t, "0.0.0.0", c.Host)
	assert.Equal(t, 0, c.ProxyHops)
	assert.Equal(t, "info", c.LogLevel)
	assert.True(t, c.AutoGracefulShutdown)
	assert.Equal(t, 256, c.MaxConnections)
}

func TestConfigValidateRejectsOutOfRangePort(t *testing.T) {
	c := DefaultConfig()
	c.Port = 0
	assert.ErrorIs(t, c.Validate(), errInvalidPort)

	c.Port = 70000
	assert.ErrorIs(t, c.Validate(), errInvalidPort)

	c.Port = 8080
	assert.NoError(t, c.Validate())
}

func TestCorsFileResolveWildcard(t *testing.T) {
	cf := corsFile{Enabled: true, OriginWildcard: true}
	resolved := cf.resolveCORSOrigin()
	assert.True(t, resolved.Enabled)
	assert.True(t, resolved.Origin.isAllowed("https://anywhere.example"))
}

func TestCorsFileResolveList(t *testing.T) {
	cf := corsFile{Enabled: true, OriginList: []string{"https://a.com", "https://b.com"}}
	resolved := cf.resolveCORSOrigin()
	assert.True(t, resolved.Origin.isAllowed("https://b.com"))
	assert.False(t, resolved.Origin.isAllowed("https://c.com"))
}

func TestCorsFileResolveSingle(t *testing.T) {
	cf := corsFile{Enabled: true, OriginString: "https://only.com"}
	resolved := cf.resolveCORSOrigin()
	assert.True(t, resolved.Origin.isAllowed("https://only.com"))
	assert.False(t, resolved.Origin.isAllowed("https://other.com"))
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.json"
	contents := `{"port": 9090, "host": "127.0.0.1", "log_level": "warn"}`
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfigFile(DefaultConfig(), path)
	assert.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigFileUnrecognizedExtension(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.ini"
	assert.NoError(t, os.WriteFile(path, []byte("port=9090"), 0o644))

	_, err := LoadConfigFile(DefaultConfig(), path)
	assert.Error(t, err)
}
