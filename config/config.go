package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultPath = "./apotek_config.json"

type Config struct {
	App        AppConfig        `json:"app"`
	Database   DatabaseConfig   `json:"database"`
	Log        LogConfig        `json:"log"`
	Auth       AuthConfig       `json:"auth"`
	Advisor    AdvisorConfig    `json:"advisor"`
	Inventory  InventoryConfig  `json:"inventory"`
	Automation AutomationConfig `json:"automation"`
}

type AppConfig struct {
	Env  string `json:"env"`
	Port string `json:"port"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type LogConfig struct {
	Level string `json:"level"`
}

type AuthConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

type AdvisorConfig struct {
	APIKey       string `json:"api_key"`
	ExplainModel string `json:"explain_model"`
	SuggestModel string `json:"suggest_model"`
}

// InventoryConfig holds the settings editable from the settings screen.
type InventoryConfig struct {
	LowStockThreshold int  `json:"low_stock_threshold"`
	PageSize          int  `json:"page_size"`
	SeedDemoData      bool `json:"seed_demo_data"`
}

type AutomationConfig struct {
	BrowserBin string `json:"browser_bin"`
}

var (
	cfg  Config
	mu   sync.RWMutex
	path = DefaultPath
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.path", "apotek.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.jwt_secret", "apotek-dev-secret")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("advisor.explain_model", "gemini-3-flash-preview")
	v.SetDefault("advisor.suggest_model", "gemini-3-pro-preview")
	v.SetDefault("inventory.low_stock_threshold", 50)
	v.SetDefault("inventory.page_size", 8)
	v.SetDefault("inventory.seed_demo_data", true)
}

// LoadConfig reads the JSON config file at p (missing file is fine), then
// applies .env and APOTEK_* environment overrides on top of the defaults.
func LoadConfig(p string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(p)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error reading config file %s: %w", p, err)
		}
	}

	v.SetEnvPrefix("APOTEK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	loaded := Config{
		App: AppConfig{
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Advisor: AdvisorConfig{
			APIKey:       v.GetString("advisor.api_key"),
			ExplainModel: v.GetString("advisor.explain_model"),
			SuggestModel: v.GetString("advisor.suggest_model"),
		},
		Inventory: InventoryConfig{
			LowStockThreshold: v.GetInt("inventory.low_stock_threshold"),
			PageSize:          v.GetInt("inventory.page_size"),
			SeedDemoData:      v.GetBool("inventory.seed_demo_data"),
		},
		Automation: AutomationConfig{
			BrowserBin: v.GetString("automation.browser_bin"),
		},
	}
	applyInventoryDefaults(&loaded.Inventory)

	mu.Lock()
	cfg = loaded
	path = p
	mu.Unlock()
	return loaded, nil
}

func applyInventoryDefaults(inv *InventoryConfig) {
	if inv.LowStockThreshold <= 0 {
		inv.LowStockThreshold = 50
	}
	if inv.PageSize <= 0 {
		inv.PageSize = 8
	}
}

// SaveInventory replaces the inventory settings and writes only the
// inventory keys back to the config file. Other keys in the file stay as
// they are; values that came from the environment are never written.
func SaveInventory(inv InventoryConfig) (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	applyInventoryDefaults(&inv)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}
	v.Set("inventory.low_stock_threshold", inv.LowStockThreshold)
	v.Set("inventory.page_size", inv.PageSize)
	v.Set("inventory.seed_demo_data", inv.SeedDemoData)
	if err := v.WriteConfigAs(path); err != nil {
		return Config{}, fmt.Errorf("error writing config file %s: %w", path, err)
	}

	cfg.Inventory = inv
	return cfg, nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
