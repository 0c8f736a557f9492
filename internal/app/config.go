package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (KASSE_ prefix), flags, or YAML config files.
type Config struct {
	CustomerAddr string `default:"0.0.0.0:8080" usage:"customer cart listen address" flag:"customer-addr"`
	AdminAddr    string `default:"0.0.0.0:8081" usage:"admin catalog editor listen address" flag:"admin-addr"`
	DataDir      string `default:"data" usage:"storage device mount directory" flag:"data-dir"`

	// StrictDecode rejects persisted records whose numeric fields do not
	// parse. The default keeps the legacy behaviour of decoding them as zero.
	StrictDecode bool `default:"false" usage:"reject records with unparsable numeric fields" flag:"strict-decode"`

	// RestartOnReset relaunches the serving state after a sales reset,
	// mirroring the device reboot of the original terminal.
	RestartOnReset bool `default:"true" usage:"relaunch serving state after a sales reset" flag:"restart-on-reset"`

	Graceful GracefulConfig
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "KASSE",
		Files:     []string{"config.yaml", "/etc/kasse/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables using
// standard names like PORT to the KASSE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.CustomerAddr == "0.0.0.0:8080" {
		c.CustomerAddr = "0.0.0.0:" + port
	}
}
