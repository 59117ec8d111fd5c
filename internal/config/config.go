// Package config loads hearth's configuration from a JSON file backend at
// $XDG_CONFIG_HOME/hearth/config.json with HEARTH_* environment variables
// overriding file values.
package config

type Config struct {
	Server    ServerConfig
	Generator GeneratorConfig
	Storage   StorageConfig
	Backfill  BackfillConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string
}

// GeneratorConfig configures the external suggestion generator. APIKey may
// be empty: the server still runs, and suggestion cache misses report the
// generator as unconfigured until a key is provided.
type GeneratorConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type StorageConfig struct {
	DataDir string
}

type BackfillConfig struct {
	Concurrency int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4200,
		},
		Generator: GeneratorConfig{
			Model:   "anthropic/claude-3.5-haiku",
			BaseURL: "https://openrouter.ai/api/v1",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Backfill: BackfillConfig{
			Concurrency: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the file backend and applies environment
// overrides. A missing generator API key is not an error here; the
// suggestion engine surfaces it per request instead, so the rest of the
// application works without one.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
