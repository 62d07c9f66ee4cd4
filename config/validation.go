package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct-level constraints and then the per-vendor required fields.
// Failures are reported as *ConfigError.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return translate(err)
	}

	if IsDatabaseConfigured(&cfg.Database) {
		if err := validateDatabase(&cfg.Database); err != nil {
			return err
		}
	}

	return nil
}

// IsDatabaseConfigured reports whether a vendor or connection string was supplied.
func IsDatabaseConfigured(cfg *DatabaseConfig) bool {
	return cfg.Type != "" || cfg.ConnectionString != ""
}

func validateDatabase(cfg *DatabaseConfig) error {
	if cfg.Type == "" {
		return NewMissingFieldError("database.type", envName("database.type"), "database.type")
	}

	if cfg.ConnectionString != "" {
		return nil
	}

	switch cfg.Type {
	case SQLite:
		if cfg.Path == "" {
			return NewMissingFieldError("database.path", envName("database.path"), "database.path")
		}
	case MySQL, MSSQL:
		for _, field := range []struct{ key, value string }{
			{"database.host", cfg.Host},
			{"database.database", cfg.Database},
			{"database.username", cfg.Username},
		} {
			if field.value == "" {
				return NewMissingFieldError(field.key, envName(field.key), field.key)
			}
		}
		if cfg.Port == 0 {
			return NewMissingFieldError("database.port", envName("database.port"), "database.port")
		}
	}

	return nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError("config", err.Error())
	}

	fe := verrs[0]
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return NewMissingFieldError(field, envName(field), field)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("unsupported value %q", fe.Value()), strings.Fields(fe.Param()))
	case "gte", "lte", "min", "max":
		return NewInvalidFieldError(field, fmt.Sprintf("%v violates %s=%s", fe.Value(), fe.Tag(), fe.Param()), nil)
	default:
		return NewValidationError(field, fmt.Sprintf("failed %s validation", fe.Tag()))
	}
}

// fieldPath turns "Config.Database.Query.Slow.Threshold" into "database.query.slow.threshold".
func fieldPath(namespace string) string {
	namespace = strings.TrimPrefix(namespace, "Config.")
	return strings.ToLower(namespace)
}

func envName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
