package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"newspost/internal/config"
)

const logLevelEnvKey = "NEWSPOST_LOG_LEVEL"

// logLevelSetting is one candidate level with the name shown in warnings.
type logLevelSetting struct {
	label string
	raw   string
}

// configureLoggerForCLI installs the default slog logger and returns a warning
// for any invalid env or config level that was skipped.
func configureLoggerForCLI(flagLevel, configLevel string) (string, error) {
	level, warnings, err := resolveLogLevel(flagLevel, os.Getenv(logLevelEnvKey), configLevel)
	if err != nil {
		return "", err
	}
	slog.SetDefault(newLogger(level))
	return strings.Join(warnings, "\n"), nil
}

// resolveLogLevel walks --log-level, NEWSPOST_LOG_LEVEL and log_level in that
// order. An invalid flag is an error; an invalid env or config value is skipped
// with a warning so the next setting, or config.DefaultLogLevel, applies.
func resolveLogLevel(flagLevel, envLevel, configLevel string) (slog.Level, []string, error) {
	if strings.TrimSpace(flagLevel) != "" {
		level, err := parseLogLevel(flagLevel)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid --log-level %q", flagLevel)
		}
		return level, nil, nil
	}

	// config.Load already folds the env value into log_level.
	if strings.TrimSpace(configLevel) == strings.TrimSpace(envLevel) {
		configLevel = ""
	}

	var warnings []string
	for _, setting := range []logLevelSetting{
		{label: logLevelEnvKey, raw: envLevel},
		{label: "log_level", raw: configLevel},
	} {
		if strings.TrimSpace(setting.raw) == "" {
			continue
		}
		level, err := parseLogLevel(setting.raw)
		if err == nil {
			return level, warnings, nil
		}
		warnings = append(warnings, fmt.Sprintf("warning: invalid %s=%q; ignoring it", setting.label, setting.raw))
	}

	level, err := parseLogLevel(config.DefaultLogLevel)
	return level, warnings, err
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return 0, fmt.Errorf("empty log level")
	case "warning":
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
