package global

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const configTOMLFileName = "config.toml"

type OpenAISettings struct {
	Endpoint string `json:"endpoint,omitempty" toml:"endpoint,omitempty"`
	Model    string `json:"model,omitempty" toml:"model,omitempty"`
}

type GlobalConfig struct {
	ListenPort int            `json:"listen_port" toml:"listen_port"`
	ServerURL  string         `json:"server_url,omitempty" toml:"server_url,omitempty"`
	DBPath     string         `json:"db_path,omitempty" toml:"db_path,omitempty"`
	OpenAI     OpenAISettings `json:"openai" toml:"openai"`
}

type ConfigStore struct {
	dir string
}

func NewConfigStore(dir string) *ConfigStore {
	return &ConfigStore{dir: dir}
}

// LoadOrInit reads config.toml, creating it with defaults on first use.
func (s *ConfigStore) LoadOrInit() (GlobalConfig, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return GlobalConfig{}, err
	}

	path := filepath.Join(s.dir, configTOMLFileName)
	if b, err := os.ReadFile(path); err == nil {
		var cfg GlobalConfig
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return GlobalConfig{}, err
		}
		return normalizeConfig(cfg), nil
	} else if !os.IsNotExist(err) {
		return GlobalConfig{}, err
	}

	cfg := normalizeConfig(GlobalConfig{})
	if err := writeTOMLAtomically(path, cfg); err != nil {
		return GlobalConfig{}, err
	}
	return cfg, nil
}

func (s *ConfigStore) Save(cfg GlobalConfig) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return writeTOMLAtomically(filepath.Join(s.dir, configTOMLFileName), normalizeConfig(cfg))
}

func normalizeConfig(cfg GlobalConfig) GlobalConfig {
	if cfg.ListenPort <= 0 {
		cfg.ListenPort = 4680
	}
	cfg.ServerURL = strings.TrimSpace(cfg.ServerURL)
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.OpenAI.Endpoint = strings.TrimSpace(cfg.OpenAI.Endpoint)
	cfg.OpenAI.Model = strings.TrimSpace(cfg.OpenAI.Model)
	return cfg
}

func writeTOMLAtomically(path string, v any) error {
	b, err := toml.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
