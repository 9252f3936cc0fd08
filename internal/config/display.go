package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const maxPlaceholderRunes = 8

// DisplayConfig controls presentation details that operators may tune without
// a restart.
type DisplayConfig struct {
	Placeholder  string `mapstructure:"placeholder"`
	Title        string `mapstructure:"title"`
	EmptyMessage string `mapstructure:"emptyMessage"`
	ErrorMessage string `mapstructure:"errorMessage"`
}

func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Placeholder:  "—",
		Title:        "Chargeback Cases",
		EmptyMessage: "No chargeback cases to review.",
		ErrorMessage: "Chargeback cases are unavailable right now. Try again shortly.",
	}
}

type DisplayConfigHolder struct {
	current atomic.Value // holds DisplayConfig
}

// NewStaticDisplayConfigHolder returns a holder that never reloads.
func NewStaticDisplayConfigHolder(cfg DisplayConfig) *DisplayConfigHolder {
	holder := &DisplayConfigHolder{}
	holder.current.Store(withDisplayDefaults(cfg))
	return holder
}

func NewDisplayConfigHolder() (*DisplayConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("display")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/chargedesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CHARGEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDisplayConfig()
	v.SetDefault("display.placeholder", defaults.Placeholder)
	v.SetDefault("display.title", defaults.Title)
	v.SetDefault("display.emptyMessage", defaults.EmptyMessage)
	v.SetDefault("display.errorMessage", defaults.ErrorMessage)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}

	cfg, err := decodeDisplayConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &DisplayConfigHolder{}
	holder.current.Store(cfg)

	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeDisplayConfig(v)
		if err != nil {
			log.Printf("[display-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[display-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *DisplayConfigHolder) Get() DisplayConfig {
	if h == nil {
		return DefaultDisplayConfig()
	}
	cfg, ok := h.current.Load().(DisplayConfig)
	if !ok {
		return DefaultDisplayConfig()
	}
	return cfg
}

func decodeDisplayConfig(v *viper.Viper) (DisplayConfig, error) {
	var cfg DisplayConfig
	if err := v.UnmarshalKey("display", &cfg); err != nil {
		return DisplayConfig{}, err
	}
	cfg = withDisplayDefaults(cfg)
	if err := validateDisplayConfig(cfg); err != nil {
		return DisplayConfig{}, err
	}
	return cfg, nil
}

func withDisplayDefaults(cfg DisplayConfig) DisplayConfig {
	defaults := DefaultDisplayConfig()
	if strings.TrimSpace(cfg.Placeholder) == "" {
		cfg.Placeholder = defaults.Placeholder
	}
	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = defaults.Title
	}
	if strings.TrimSpace(cfg.EmptyMessage) == "" {
		cfg.EmptyMessage = defaults.EmptyMessage
	}
	if strings.TrimSpace(cfg.ErrorMessage) == "" {
		cfg.ErrorMessage = defaults.ErrorMessage
	}
	return cfg
}

func validateDisplayConfig(cfg DisplayConfig) error {
	if utf8.RuneCountInString(cfg.Placeholder) > maxPlaceholderRunes {
		return errors.New("display.placeholder is too long")
	}
	if cfg.EmptyMessage == cfg.ErrorMessage {
		return errors.New("display.emptyMessage and display.errorMessage must differ")
	}
	return nil
}
