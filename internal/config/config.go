// SPDX-License-Identifier: MIT

// Package config provides configuration management for vdeskd.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/driftlab/vdeskd/internal/model"
	"gopkg.in/yaml.v3"
)

// Config represents the YAML configuration structure.
type Config struct {
	LogLevel string `yaml:"logLevel,omitempty"`

	API      APIConfig      `yaml:"api"`
	Store    StoreConfig    `yaml:"store"`
	Queue    QueueConfig    `yaml:"queue"`
	Sessions SessionsConfig `yaml:"sessions"`
}

// APIConfig holds the HTTP listener settings.
type APIConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// QueueConfig holds event queue settings.
type QueueConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Name     string `yaml:"name,omitempty"`

	Workers           int    `yaml:"workers,omitempty"`
	BatchSize         int    `yaml:"batchSize,omitempty"`
	WaitTime          string `yaml:"waitTime,omitempty"`          // long-poll duration, e.g. "20s"
	VisibilityTimeout string `yaml:"visibilityTimeout,omitempty"` // e.g. "30s"

	// TrustedSenders lists sender identities whose events are accepted.
	// Empty means every sender is trusted.
	TrustedSenders []string `yaml:"trustedSenders,omitempty"`
}

// SessionsConfig holds cluster-wide session policy.
type SessionsConfig struct {
	// WorkingHours is the default window WORKING_HOURS schedules resolve to.
	WorkingHours WindowConfig `yaml:"workingHours"`

	// DefaultSchedule maps day-of-week keys (monday..sunday) to the schedule
	// applied to newly created sessions.
	DefaultSchedule map[string]DayScheduleConfig `yaml:"defaultSchedule,omitempty"`

	// TickInterval is how often the schedule tick event is published.
	TickInterval string `yaml:"tickInterval,omitempty"`
}

// WindowConfig is a wall-clock HH:MM window.
type WindowConfig struct {
	StartUpTime  string `yaml:"startUpTime"`
	ShutDownTime string `yaml:"shutDownTime"`
}

// DayScheduleConfig is one day's default schedule.
type DayScheduleConfig struct {
	Type         string `yaml:"type"`
	StartUpTime  string `yaml:"startUpTime,omitempty"`
	ShutDownTime string `yaml:"shutDownTime,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		API:      APIConfig{ListenAddr: ":8080"},
		Store:    StoreConfig{Path: "vdeskd.db"},
		Queue: QueueConfig{
			Addr:              "127.0.0.1:6379",
			Name:              "vdeskd:events",
			Workers:           4,
			BatchSize:         10,
			WaitTime:          "20s",
			VisibilityTimeout: "30s",
		},
		Sessions: SessionsConfig{
			WorkingHours: WindowConfig{StartUpTime: "09:00", ShutDownTime: "17:00"},
			TickInterval: "30m",
		},
	}
}

// Load reads the YAML file at path on top of Defaults. A missing path is not
// an error; the defaults are returned. Environment overrides are applied
// last.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if v := os.Getenv("VDESKD_QUEUE_ADDR"); v != "" {
		cfg.Queue.Addr = v
	}
	if v := os.Getenv("VDESKD_LISTEN_ADDR"); v != "" {
		cfg.API.ListenAddr = v
	}
	if v := os.Getenv("VDESKD_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as runtime faults.
func (c *Config) Validate() error {
	if c.Queue.Workers <= 0 {
		return fmt.Errorf("config: queue.workers must be > 0, got %d", c.Queue.Workers)
	}
	if c.Queue.BatchSize <= 0 {
		return fmt.Errorf("config: queue.batchSize must be > 0, got %d", c.Queue.BatchSize)
	}
	if _, err := c.QueueWaitTime(); err != nil {
		return err
	}
	if _, err := c.QueueVisibilityTimeout(); err != nil {
		return err
	}
	if _, err := c.SessionsTickInterval(); err != nil {
		return err
	}
	for day, ds := range c.Sessions.DefaultSchedule {
		if model.ScheduleType(ds.Type) == model.ScheduleCustom && (ds.StartUpTime == "" || ds.ShutDownTime == "") {
			return fmt.Errorf("config: defaultSchedule.%s: CUSTOM requires startUpTime and shutDownTime", day)
		}
	}
	return nil
}

// QueueWaitTime parses the long-poll duration.
func (c *Config) QueueWaitTime() (time.Duration, error) {
	return parseDuration("queue.waitTime", c.Queue.WaitTime, 20*time.Second)
}

// QueueVisibilityTimeout parses the redelivery timeout.
func (c *Config) QueueVisibilityTimeout() (time.Duration, error) {
	return parseDuration("queue.visibilityTimeout", c.Queue.VisibilityTimeout, 30*time.Second)
}

// SessionsTickInterval parses the schedule tick period.
func (c *Config) SessionsTickInterval() (time.Duration, error) {
	return parseDuration("sessions.tickInterval", c.Sessions.TickInterval, 30*time.Minute)
}

func parseDuration(field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be > 0, got %v", field, d)
	}
	return d, nil
}
