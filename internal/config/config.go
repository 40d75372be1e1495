package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mnogodumalon/schichtplan/internal/livingapps"
	"github.com/mnogodumalon/schichtplan/internal/schedule"
)

// Default app IDs of the four production collections.
const (
	DefaultCompaniesAppID   = "68b04d9e0d0c4ed362914845"
	DefaultShiftTypesAppID  = "682651bf710e2817fd194864"
	DefaultAssignmentsAppID = "682651bf7002b5008a5598bf"
	DefaultEmployeesAppID   = "682651b67f1fb97703cf487a"
)

type Config struct {
	Addr               string
	Environment        string
	FrontendDir        string
	BaseURL            string
	Token              string
	CompaniesAppID     string
	ShiftTypesAppID    string
	EmployeesAppID     string
	AssignmentsAppID   string
	GeminiAPIKey       string
	GeminiModel        string
	MaxBodyBytes       int64
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	MetricsEnabled     bool
}

func Load() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		FrontendDir:        getEnv("FRONTEND_DIR", "frontend/dist"),
		BaseURL:            getEnv("LIVINGAPPS_BASE_URL", livingapps.DefaultBaseURL),
		Token:              getEnv("LIVINGAPPS_TOKEN", ""),
		CompaniesAppID:     getEnv("COMPANIES_APP_ID", DefaultCompaniesAppID),
		ShiftTypesAppID:    getEnv("SHIFT_TYPES_APP_ID", DefaultShiftTypesAppID),
		EmployeesAppID:     getEnv("EMPLOYEES_APP_ID", DefaultEmployeesAppID),
		AssignmentsAppID:   getEnv("ASSIGNMENTS_APP_ID", DefaultAssignmentsAppID),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

// Collections builds the store location set handed to the scheduling core.
func (c Config) Collections() schedule.Collections {
	return schedule.Collections{
		BaseURL:     c.BaseURL,
		Companies:   c.CompaniesAppID,
		ShiftTypes:  c.ShiftTypesAppID,
		Employees:   c.EmployeesAppID,
		Assignments: c.AssignmentsAppID,
	}
}

var appIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("LIVINGAPPS_BASE_URL is required")
	}
	for name, id := range map[string]string{
		"COMPANIES_APP_ID":   c.CompaniesAppID,
		"SHIFT_TYPES_APP_ID": c.ShiftTypesAppID,
		"EMPLOYEES_APP_ID":   c.EmployeesAppID,
		"ASSIGNMENTS_APP_ID": c.AssignmentsAppID,
	} {
		if !appIDPattern.MatchString(id) {
			return fmt.Errorf("%s must be a 24 character hex app id", name)
		}
	}
	if c.Environment == "production" && strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("LIVINGAPPS_TOKEN must be set in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
