package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Muhammadurasheed/genesis-os-26/internal/model"
)

// Server holds the HTTP exposure settings
type Server struct {
	Port           int
	AllowedOrigins []string
}

// Monitoring holds every tunable of the observability subsystem.
// Retention and windowing numbers are defaults here, not constants.
type Monitoring struct {
	MetricShards        int
	ExecutionShards     int
	ExecutionRetention  time.Duration
	ExecutionMaxRecords int
	ExecutionStaleAfter time.Duration
	AlertWindow         time.Duration
	AlertResolveAfter   time.Duration
	SweepInterval       time.Duration
	Rules               []model.AlertRule
}

// Config is the full service configuration
type Config struct {
	Server     Server
	Monitoring Monitoring
}

// ruleSpec mirrors one alert rule entry in the yaml file
type ruleSpec struct {
	Name         string        `mapstructure:"name"`
	Metric       string        `mapstructure:"metric"`
	Comparator   string        `mapstructure:"comparator"`
	Threshold    float64       `mapstructure:"threshold"`
	Severity     string        `mapstructure:"severity"`
	ResolveAfter time.Duration `mapstructure:"resolve_after"`
}

// Load reads config.yaml from path, falling back to defaults when the
// file is absent. GENESIS_-prefixed environment variables override
// file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvPrefix("GENESIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8001)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("monitoring.metric_shards", 16)
	v.SetDefault("monitoring.execution_shards", 16)
	v.SetDefault("monitoring.execution_retention", time.Hour)
	v.SetDefault("monitoring.execution_max_records", 10000)
	v.SetDefault("monitoring.execution_stale_after", 24*time.Hour)
	v.SetDefault("monitoring.alert_window", time.Hour)
	v.SetDefault("monitoring.alert_resolve_after", 5*time.Minute)
	v.SetDefault("monitoring.sweep_interval", time.Minute)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var specs []ruleSpec
	if err := v.UnmarshalKey("monitoring.alert_rules", &specs); err != nil {
		return nil, fmt.Errorf("failed to parse alert rules: %w", err)
	}
	rules := make([]model.AlertRule, 0, len(specs))
	for _, spec := range specs {
		rules = append(rules, model.AlertRule{
			Name:         spec.Name,
			Metric:       spec.Metric,
			Comparator:   model.Comparator(spec.Comparator),
			Threshold:    spec.Threshold,
			Severity:     model.AlertSeverity(spec.Severity),
			ResolveAfter: spec.ResolveAfter,
		})
	}

	return &Config{
		Server: Server{
			Port:           v.GetInt("server.port"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
		Monitoring: Monitoring{
			MetricShards:        v.GetInt("monitoring.metric_shards"),
			ExecutionShards:     v.GetInt("monitoring.execution_shards"),
			ExecutionRetention:  v.GetDuration("monitoring.execution_retention"),
			ExecutionMaxRecords: v.GetInt("monitoring.execution_max_records"),
			ExecutionStaleAfter: v.GetDuration("monitoring.execution_stale_after"),
			AlertWindow:         v.GetDuration("monitoring.alert_window"),
			AlertResolveAfter:   v.GetDuration("monitoring.alert_resolve_after"),
			SweepInterval:       v.GetDuration("monitoring.sweep_interval"),
			Rules:               rules,
		},
	}, nil
}
