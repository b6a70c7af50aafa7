package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Config struct {
	ListenHost     string
	ListenPort     int
	DBPath         string
	LogLevel       string
	ServerURL      string
	RequestTimeout time.Duration

	WebUIMode        string
	WebUIDevProxyURL string
	WebUIDistDir     string

	OpenAIEndpoint string
	OpenAIModel    string
	OpenAIAPIKey   string
}

var (
	cacheTTL   = 10 * time.Second
	nowFunc    = time.Now
	cacheMu    sync.RWMutex
	cachedCfg  Config
	cachedAt   time.Time
	cacheValid bool
)

func LoadConfig() Config {
	cfg := loadFromEnv()
	cacheMu.Lock()
	cachedCfg = cfg
	cachedAt = nowFunc()
	cacheValid = true
	cacheMu.Unlock()
	return cfg
}

func GetConfig() *Config {
	now := nowFunc()
	cacheMu.RLock()
	valid := cacheValid && now.Sub(cachedAt) < cacheTTL
	if valid {
		out := cachedCfg
		cacheMu.RUnlock()
		return &out
	}
	cacheMu.RUnlock()

	cfg := loadFromEnv()
	cacheMu.Lock()
	cachedCfg = cfg
	cachedAt = now
	cacheValid = true
	cacheMu.Unlock()

	out := cfg
	return &out
}

func loadFromEnv() Config {
	host := os.Getenv("TASKCHAT_LISTEN_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := 4680
	if p := os.Getenv("TASKCHAT_LISTEN_PORT"); p != "" {
		if n := atoiOrDefault(p, 4680); n > 0 {
			port = n
		}
	}

	dbPath := os.Getenv("TASKCHAT_DB_PATH")
	if dbPath == "" {
		dbPath = defaultDBPath()
	}

	level := os.Getenv("TASKCHAT_LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	serverURL := os.Getenv("TASKCHAT_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://127.0.0.1:4680"
	}

	timeout := 10 * time.Second
	if v := os.Getenv("TASKCHAT_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}

	webUIMode := os.Getenv("TASKCHAT_WEBUI_MODE")
	if webUIMode == "" {
		webUIMode = "builtin"
	}
	webUIDevProxyURL := os.Getenv("TASKCHAT_WEBUI_DEV_PROXY_URL")
	if webUIDevProxyURL == "" {
		webUIDevProxyURL = "http://127.0.0.1:15173"
	}
	webUIDistDir := os.Getenv("TASKCHAT_WEBUI_DIST_DIR")

	return Config{
		ListenHost:       host,
		ListenPort:       port,
		DBPath:           dbPath,
		LogLevel:         level,
		ServerURL:        serverURL,
		RequestTimeout:   timeout,
		WebUIMode:        webUIMode,
		WebUIDevProxyURL: webUIDevProxyURL,
		WebUIDistDir:     webUIDistDir,
		OpenAIEndpoint:   os.Getenv("OPENAI_ENDPOINT"),
		OpenAIModel:      os.Getenv("OPENAI_MODEL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Clean("taskchat.db")
	}
	return filepath.Join(home, ".taskchat", "taskchat.db")
}

func atoiOrDefault(v string, fallback int) int {
	n := 0
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return fallback
		}
		n = n*10 + int(v[i]-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}
