package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"heating_board/internal/models"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port"`
	Log  struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // console | json
	} `mapstructure:"log"`
	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`
	Sim struct {
		Tick time.Duration `mapstructure:"tick"`
	} `mapstructure:"sim"`
	History struct {
		Sessions     int `mapstructure:"sessions"`
		Calibrations int `mapstructure:"calibrations"`
	} `mapstructure:"history"`
	Controls Controls `mapstructure:"controls"`
	MQTT     struct {
		Broker   string `mapstructure:"broker"` // empty disables telemetry
		Topic    string `mapstructure:"topic"`
		ClientID string `mapstructure:"client_id"`
	} `mapstructure:"mqtt"`
}

// Controls seed the board controls when none are stored yet.
type Controls struct {
	FloorMaterial    string  `mapstructure:"floor_material"`
	FloorThicknessMm float64 `mapstructure:"floor_thickness_mm"`
	FloorMaxC        float64 `mapstructure:"floor_max_c"`
	NichromeFinalC   float64 `mapstructure:"nichrome_final_c"`
	WireTauSec       float64 `mapstructure:"wire_tau_s"`
	WireKLoss        float64 `mapstructure:"wire_k_loss"`
	WireThermalC     float64 `mapstructure:"wire_c"`
	MaxPowerW        float64 `mapstructure:"max_power_w"`
}

func (c Controls) Model() models.Controls {
	return models.Controls{
		FloorMaterial:    c.FloorMaterial,
		FloorThicknessMm: c.FloorThicknessMm,
		FloorMaxC:        c.FloorMaxC,
		NichromeFinalC:   c.NichromeFinalC,
		WireTauSec:       c.WireTauSec,
		WireKLoss:        c.WireKLoss,
		WireThermalC:     c.WireThermalC,
		MaxPowerW:        c.MaxPowerW,
	}
}

const envPrefix = "HEATING"

// Load reads config.yml from dir. A missing file is not an error: defaults and
// HEATING_* environment variables (HEATING_DB_PATH, HEATING_MQTT_BROKER, ...) still apply.
func Load(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Sim.Tick <= 0 {
		return Config{}, fmt.Errorf("sim.tick must be positive, got %s", cfg.Sim.Tick)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", ":memory:")
	v.SetDefault("sim.tick", "1s")
	v.SetDefault("history.sessions", 100)
	v.SetDefault("history.calibrations", 16)

	v.SetDefault("controls.floor_material", "concrete")
	v.SetDefault("controls.floor_thickness_mm", 32.0)
	v.SetDefault("controls.floor_max_c", 35.0)
	v.SetDefault("controls.nichrome_final_c", 120.0)
	v.SetDefault("controls.wire_tau_s", 48.0)
	v.SetDefault("controls.wire_k_loss", 0.35)
	v.SetDefault("controls.wire_c", 16.8)
	v.SetDefault("controls.max_power_w", 200.0)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "heating/board/monitor")
	v.SetDefault("mqtt.client_id", "heating-board-sim")
}
