package config

import (
	"fmt"
	"os"
	"roomgrid/pkg/logger"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	DataServiceURL      string
	DataServiceDB       string
	DataServiceUser     string
	DataServicePassword string
	DataServiceTimeout  time.Duration

	VisibleDays    int
	RoomTypes      []string
	ActionDelay    time.Duration
	ResizeDebounce time.Duration
	ScrollThrottle time.Duration
	SearchThrottle time.Duration

	AllowInvalidActions   bool
	AssistedMovement      bool
	DivideRoomsByCapacity bool
	ShowUnusedZones       bool
	CountChildrenAsGuests bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		DataServiceURL:      getEnvStr(EnvDataServiceURL, DefaultDataServiceURL),
		DataServiceDB:       getEnvStr(EnvDataServiceDB, DefaultDataServiceDB),
		DataServiceUser:     getEnvStr(EnvDataServiceUser, ""),
		DataServicePassword: getEnvStr(EnvDataServicePassword, ""),
		DataServiceTimeout:  getEnvDuration(EnvDataServiceTimeout, DefaultDataServiceTimeout),

		VisibleDays:    getEnvNum(EnvVisibleDays, DefaultVisibleDays),
		RoomTypes:      getEnvList(EnvRoomTypes, DefaultRoomTypes),
		ActionDelay:    getEnvDuration(EnvActionDelay, DefaultActionDelay),
		ResizeDebounce: getEnvDuration(EnvResizeDebounce, DefaultResizeDebounce),
		ScrollThrottle: getEnvDuration(EnvScrollThrottle, DefaultScrollThrottle),
		SearchThrottle: getEnvDuration(EnvSearchThrottle, DefaultSearchThrottle),

		AllowInvalidActions:   getEnvBool(EnvAllowInvalidActions, false),
		AssistedMovement:      getEnvBool(EnvAssistedMovement, true),
		DivideRoomsByCapacity: getEnvBool(EnvDivideRoomsByCapacity, false),
		ShowUnusedZones:       getEnvBool(EnvShowUnusedZones, true),
		CountChildrenAsGuests: getEnvBool(EnvCountChildrenAsGuests, false),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.DataServiceURL == "" {
		errors = append(errors, "DataServiceURL cannot be empty")
	}
	if cfg.DataServiceDB == "" {
		errors = append(errors, "DataServiceDB cannot be empty")
	}
	if cfg.DataServiceTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("DataServiceTimeout must be positive, got: %s", cfg.DataServiceTimeout))
	}

	if cfg.VisibleDays < 1 || cfg.VisibleDays > 366 {
		errors = append(errors, fmt.Sprintf("VisibleDays must be between 1 and 366, got: %d", cfg.VisibleDays))
	}
	if len(cfg.RoomTypes) == 0 {
		errors = append(errors, "RoomTypes cannot be empty")
	}
	if cfg.ActionDelay < 0 {
		errors = append(errors, fmt.Sprintf("ActionDelay cannot be negative, got: %s", cfg.ActionDelay))
	}
	if cfg.ResizeDebounce < 0 {
		errors = append(errors, fmt.Sprintf("ResizeDebounce cannot be negative, got: %s", cfg.ResizeDebounce))
	}
	if cfg.ScrollThrottle < 0 {
		errors = append(errors, fmt.Sprintf("ScrollThrottle cannot be negative, got: %s", cfg.ScrollThrottle))
	}
	if cfg.SearchThrottle < 0 {
		errors = append(errors, fmt.Sprintf("SearchThrottle cannot be negative, got: %s", cfg.SearchThrottle))
	}

	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"data_service_url", cfg.DataServiceURL,
		"data_service_db", cfg.DataServiceDB,
		"data_service_user_set", cfg.DataServiceUser != "",
		"data_service_timeout", cfg.DataServiceTimeout,
		"visible_days", cfg.VisibleDays,
		"room_types", cfg.RoomTypes,
		"action_delay", cfg.ActionDelay,
		"resize_debounce", cfg.ResizeDebounce,
		"scroll_throttle", cfg.ScrollThrottle,
		"search_throttle", cfg.SearchThrottle,
		"allow_invalid_actions", cfg.AllowInvalidActions,
		"assisted_movement", cfg.AssistedMovement,
		"divide_rooms_by_capacity", cfg.DivideRoomsByCapacity,
		"show_unused_zones", cfg.ShowUnusedZones,
		"count_children_as_guests", cfg.CountChildrenAsGuests,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"request_timeout", cfg.RequestTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
