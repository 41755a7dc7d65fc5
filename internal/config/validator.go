// Package config provides configuration management for the uptime monitor.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "monitoring.default_interval")
	Tag     string      // Validation tag that failed (e.g., "required", "gte")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// validate is the package-level validator instance.
var validate *validator.Validate

// init initializes the validator with custom validations.
func init() {
	validate = validator.New()

	// Register custom validation for timezone
	validate.RegisterValidation("timezone", validateTimezone)
}

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	// Run custom business logic validations
	if errs := validateMonitoringDefaults(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateAlerting(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateTransports(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateRetention(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateTimezoneConfig(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateTimezone is a custom validator for timezone strings.
func validateTimezone(fl validator.FieldLevel) bool {
	tz := fl.Field().String()
	if tz == "" {
		return true // Empty is allowed, will use default
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// validateMonitoringDefaults validates the scheduling defaults.
func validateMonitoringDefaults(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Monitoring.DefaultInterval <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "monitoring.default_interval",
			Tag:     "gt",
			Value:   cfg.Monitoring.DefaultInterval,
			Message: "default check interval must be positive",
		})
	}

	if cfg.Monitoring.DefaultTimeout <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "monitoring.default_timeout",
			Tag:     "gt",
			Value:   cfg.Monitoring.DefaultTimeout,
			Message: "default timeout must be positive",
		})
	}

	if cfg.Monitoring.DefaultTimeout >= cfg.Monitoring.DefaultInterval && cfg.Monitoring.DefaultInterval > 0 {
		errors = append(errors, &ValidationError{
			Field:   "monitoring.default_timeout",
			Tag:     "lt_interval",
			Value:   fmt.Sprintf("timeout=%v, interval=%v", cfg.Monitoring.DefaultTimeout, cfg.Monitoring.DefaultInterval),
			Message: fmt.Sprintf("default timeout (%v) must be less than default check interval (%v)", cfg.Monitoring.DefaultTimeout, cfg.Monitoring.DefaultInterval),
		})
	}

	if cfg.Monitoring.SystemInterval < 0 {
		errors = append(errors, &ValidationError{
			Field:   "monitoring.system_interval",
			Tag:     "gte",
			Value:   cfg.Monitoring.SystemInterval,
			Message: "system sampling interval must not be negative (use 0 to disable)",
		})
	}

	if cfg.Monitoring.RefreshInterval <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "monitoring.refresh_interval",
			Tag:     "gt",
			Value:   cfg.Monitoring.RefreshInterval,
			Message: "registry refresh interval must be positive",
		})
	}

	return errors
}

// validateAlerting validates the alert evaluator configuration.
func validateAlerting(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Alerting.Cooldown <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "alerting.cooldown",
			Tag:     "gt",
			Value:   cfg.Alerting.Cooldown,
			Message: "alert cooldown must be positive",
		})
	}

	return errors
}

// validateTransports validates that enabled transports carry their credentials.
func validateTransports(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Email.Enabled {
		if cfg.Email.Host == "" || cfg.Email.From == "" || len(cfg.Email.To) == 0 {
			errors = append(errors, &ValidationError{
				Field:   "email",
				Tag:     "required_when_enabled",
				Value:   "",
				Message: "host, from and to are required when email notifications are enabled",
			})
		}
	}

	if cfg.Slack.Enabled && cfg.Slack.WebhookURL == "" {
		errors = append(errors, &ValidationError{
			Field:   "slack.webhook_url",
			Tag:     "required_when_enabled",
			Value:   "",
			Message: "webhook_url is required when Slack notifications are enabled",
		})
	}

	if cfg.Telegram.Enabled && (cfg.Telegram.Token == "" || cfg.Telegram.ChatID == "") {
		errors = append(errors, &ValidationError{
			Field:   "telegram",
			Tag:     "required_when_enabled",
			Value:   "",
			Message: "token and chat_id are required when Telegram notifications are enabled",
		})
	}

	return errors
}

// validateRetention validates the retention configuration.
func validateRetention(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Retention.MaxAge <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "retention.max_age",
			Tag:     "gt",
			Value:   cfg.Retention.MaxAge,
			Message: "retention max age must be positive",
		})
	}

	if cfg.Retention.SweepInterval <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "retention.sweep_interval",
			Tag:     "gt",
			Value:   cfg.Retention.SweepInterval,
			Message: "retention sweep interval must be positive",
		})
	}

	return errors
}

// validateTimezoneConfig validates the timezone configuration.
func validateTimezoneConfig(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Report.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
			errors = append(errors, &ValidationError{
				Field:   "report.timezone",
				Tag:     "timezone",
				Value:   cfg.Report.Timezone,
				Message: fmt.Sprintf("invalid timezone: %s", cfg.Report.Timezone),
			})
		}
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Monitoring.DefaultInterval" -> "monitoring.defaultinterval"
func formatFieldName(namespace string) string {
	// Remove the root struct name (e.g., "Config.")
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // Remove "Config"
	}

	// Convert to lowercase and join
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "url":
		return fmt.Sprintf("invalid URL format: %v", fe.Value())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	case "timezone":
		return fmt.Sprintf("invalid timezone: %v", fe.Value())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
