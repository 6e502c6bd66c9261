package ember

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface of a Server (§6), a single
// struct of explicit fields with mapstructure tags rather than a
// dynamic option bag (§9 "Configuration objects").
type Config struct {
	Port                 int      `mapstructure:"port"`
	Host                 string   `mapstructure:"host"`
	ProxyHops            int      `mapstructure:"proxy_hops"`
	LogLevel             string   `mapstructure:"log_level"`
	AutoGracefulShutdown bool     `mapstructure:"auto_graceful_shutdown"`
	MaxConnections       int      `mapstructure:"max_connections"`
	CORS                 corsFile `mapstructure:"cors"`

	BodyParser struct {
		JSON        JSONConfig        `mapstructure:"json"`
		URLEncoded  URLEncodedConfig  `mapstructure:"url_encoded"`
		FileUploads FileUploadsConfig `mapstructure:"file_uploads"`
	} `mapstructure:"body_parser"`

	// ConfigFile, when non-empty, is loaded by New and merged on top of
	// the other fields of the Config passed to it; the extension selects
	// the decoder (.json, .toml, .yaml/.yml).
	ConfigFile string `mapstructure:"-"`
}

// corsFile is the file-decodable shape of CORSConfig: CORSOrigin's
// tagged-variant fields aren't representable in JSON/TOML/YAML, so
// config files set only OriginWildcard, OriginString, or OriginList,
// resolved into a CORSOrigin by resolveCORSOrigin.
type corsFile struct {
	Enabled              bool     `mapstructure:"enabled"`
	OriginWildcard       bool     `mapstructure:"origin_wildcard"`
	OriginString         string   `mapstructure:"origin"`
	OriginList           []string `mapstructure:"origin_list"`
	Credentials          bool     `mapstructure:"credentials"`
	Methods              []string `mapstructure:"methods"`
	AllowedHeaders       []string `mapstructure:"allowed_headers"`
	ExposedHeaders       []string `mapstructure:"exposed_headers"`
	MaxAge               int      `mapstructure:"max_age"`
	OptionsSuccessStatus int      `mapstructure:"options_success_status"`
	PreflightContinue    bool     `mapstructure:"preflight_continue"`
}

// resolveCORSOrigin turns the file-decodable corsFile into a live
// CORSConfig with a proper CORSOrigin tagged variant.
func (cf corsFile) resolveCORSOrigin() CORSConfig {
	origin := SingleOrigin(cf.OriginString)
	switch {
	case cf.OriginWildcard:
		origin = WildcardOrigin()
	case len(cf.OriginList) > 0:
		origin = OriginList(cf.OriginList...)
	}

	return CORSConfig{
		Enabled:              cf.Enabled,
		Origin:               origin,
		Credentials:          cf.Credentials,
		Methods:              cf.Methods,
		AllowedHeaders:       cf.AllowedHeaders,
		ExposedHeaders:       cf.ExposedHeaders,
		MaxAge:               cf.MaxAge,
		OptionsSuccessStatus: cf.OptionsSuccessStatus,
		PreflightContinue:    cf.PreflightContinue,
	}
}

// DefaultConfig returns the configuration used when a Server is
// constructed with no overrides (§6's enumerated defaults).
func DefaultConfig() Config {
	var c Config
	c.Port = 5000
	c.Host = "0.0.0.0"
	c.ProxyHops = 0
	c.LogLevel = "info"
	c.AutoGracefulShutdown = true
	c.MaxConnections = 256
	c.BodyParser.JSON = DefaultJSONConfig()
	c.BodyParser.URLEncoded = DefaultURLEncodedConfig()
	c.BodyParser.FileUploads = DefaultFileUploadsConfig()
	return c
}

// ResolvedCORS turns the file-decodable CORS field into a live
// CORSConfig with a proper CORSOrigin tagged variant.
func (c Config) ResolvedCORS() CORSConfig {
	return c.CORS.resolveCORSOrigin()
}

// errInvalidPort is raised at construction time for a port outside
// 1-65535 (§5 "Port validation").
var errInvalidPort = errors.New("ember: invalid port number")

// Validate checks the port-range invariant (§5).
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errInvalidPort
	}
	return nil
}

// LoadConfigFile reads path (.json, .toml, .yaml, or .yml) into a
// generic map and mapstructure-decodes it onto a copy of base, mirroring
// the teacher's extension-dispatched config loader.
func LoadConfigFile(base Config, path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}

	var decoded map[string]interface{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &decoded)
	case ".toml":
		err = toml.Unmarshal(raw, &decoded)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &decoded)
	default:
		return base, errors.New("ember: unrecognized config file extension: " + filepath.Ext(path))
	}
	if err != nil {
		return base, err
	}

	cfg := base
	if err := mapstructure.Decode(decoded, &cfg); err != nil {
		return base, err
	}

	return cfg, nil
}
