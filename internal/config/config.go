package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// MissingHistoryPolicy decides the full-time flag of employees that have no
// status-history entry at all.
type MissingHistoryPolicy string

const (
	NotFullTime    MissingHistoryPolicy = "not_full_time"
	AssumeFullTime MissingHistoryPolicy = "assume_full_time"
)

// SegmentConfig describes the default reporting population.
type SegmentConfig struct {
	Location      string
	WorkingStatus string
	FullTime      bool
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath      string
	RawDir        string
	ExportDir     string
	LogDir        string
	BadgeLogPath  string
	RosterPath    string
	HistoryPath   string
	OverridesPath string

	Location *time.Location

	Segment              SegmentConfig
	CoreDays             []time.Weekday
	OutlierMinutes       float64
	DefaultAnalysisDays  int
	MissingHistoryPolicy MissingHistoryPolicy
	Workers              int
	HTTPAddr             string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only.
func FromEnv() (*AppConfig, error) {
	dataPath := getEnv("DATA_PATH", "data")
	rawDir := filepath.Join(dataPath, "raw")

	tzName := getEnv("ATTENDANCE_TIMEZONE", "Europe/London")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TIMEZONE %q: %w", tzName, err)
	}

	coreDays, err := ParseWeekdays(getEnv("CORE_WEEKDAYS", "Tuesday,Wednesday,Thursday"))
	if err != nil {
		return nil, fmt.Errorf("invalid CORE_WEEKDAYS: %w", err)
	}

	policy := MissingHistoryPolicy(strings.ToLower(getEnv("MISSING_HISTORY_POLICY", string(NotFullTime))))
	switch policy {
	case NotFullTime, AssumeFullTime:
	default:
		return nil, fmt.Errorf("invalid MISSING_HISTORY_POLICY %q (want %s or %s)", policy, NotFullTime, AssumeFullTime)
	}

	cfg := &AppConfig{
		DataPath:      dataPath,
		RawDir:        rawDir,
		ExportDir:     getEnv("EXPORT_DIR", filepath.Join(dataPath, "processed")),
		LogDir:        getEnv("LOGS_FOLDER", "logs"),
		BadgeLogPath:  getEnv("BADGE_LOG_PATH", filepath.Join(rawDir, "key_card_access.csv")),
		RosterPath:    getEnv("ROSTER_PATH", filepath.Join(rawDir, "employee_info.csv")),
		HistoryPath:   getEnv("STATUS_HISTORY_PATH", filepath.Join(rawDir, "employment_status_history.csv")),
		OverridesPath: getEnv("OVERRIDES_PATH", filepath.Join(rawDir, "overrides.json")),
		Location:      loc,
		Segment: SegmentConfig{
			Location:      getEnv("SEGMENT_LOCATION", "London UK"),
			WorkingStatus: getEnv("SEGMENT_WORKING_STATUS", "Hybrid"),
			FullTime:      getEnvBool("SEGMENT_FULL_TIME", true),
		},
		CoreDays:             coreDays,
		OutlierMinutes:       float64(getEnvInt("ARRIVAL_OUTLIER_MINUTES", 120)),
		DefaultAnalysisDays:  getEnvInt("DEFAULT_ANALYSIS_DAYS", 365),
		MissingHistoryPolicy: policy,
		Workers:              getEnvInt("WORKERS", runtime.GOMAXPROCS(0)),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return cfg, nil
}

// ParseWeekdays parses a comma separated list of English weekday names.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		d, ok := weekdayByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no weekdays in %q", s)
	}
	return days, nil
}

func weekdayByName(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := d.String()
		if strings.EqualFold(name, full) || strings.EqualFold(name, full[:3]) {
			return d, true
		}
	}
	return 0, false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric configuration value")
	}
	return fallback
}
