package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Defaults applied to fields left empty in the config file
const (
	DefaultInterviewStartHour = 8
	DefaultInterviewEndHour   = 23
	DefaultNoticeHours        = 24
	DefaultLocationFormat     = "Interview room for %s"
	DefaultGmailUserID        = "me"
)

// InterviewHours is the daily range in which interviews can be scheduled
type InterviewHours struct {
	Start int `yaml:"start" validate:"min=0,max=23"`
	End   int `yaml:"end" validate:"min=1,max=24,gtfield=Start"`
}

// Blackout excludes every day matching the rrule from interview scheduling
type Blackout struct {
	RRule  string `yaml:"rrule" validate:"required"`
	Reason string `yaml:"reason,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL     string         `yaml:"databaseURL" validate:"required"`
	Timezone        string         `yaml:"timezone" validate:"required"`
	InterviewHours  InterviewHours `yaml:"interviewHours"`
	NoticeHours     int            `yaml:"noticeHours" validate:"min=0"`
	LocationFormat  string         `yaml:"locationFormat,omitempty"`
	Blackouts       []Blackout     `yaml:"blackouts,omitempty" validate:"dive"`
	ScheduleSheetID string         `yaml:"scheduleSheetID,omitempty"`
	GmailUserID     string         `yaml:"gmailUserID,omitempty"`
	GmailSender     string         `yaml:"gmailSender,omitempty"`
}

// Location returns the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// NoticePeriod returns the minimum time between an allocation run and its earliest interview
func (c *Config) NoticePeriod() time.Duration {
	return time.Duration(c.NoticeHours) * time.Hour
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration from interview_config.<env>.yaml.
// A .env file in the working directory is loaded first so DATABASE_URL can be set there.
func LoadWithEnv(env string) (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	name := "interview_config.yaml"
	if env != "" {
		name = "interview_config." + env + ".yaml"
	}

	configPath, err := findFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.InterviewHours.Start == 0 && cfg.InterviewHours.End == 0 {
		cfg.InterviewHours = InterviewHours{Start: DefaultInterviewStartHour, End: DefaultInterviewEndHour}
	}
	if cfg.NoticeHours == 0 {
		cfg.NoticeHours = DefaultNoticeHours
	}
	if cfg.LocationFormat == "" {
		cfg.LocationFormat = DefaultLocationFormat
	}
	if cfg.GmailUserID == "" {
		cfg.GmailUserID = DefaultGmailUserID
	}
}

// Validate validates the configuration struct, the timezone and the blackout rrules
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Validate rrule syntax for each blackout
	for i, blackout := range cfg.Blackouts {
		if _, err := rrule.StrToRRule(blackout.RRule); err != nil {
			return fmt.Errorf("invalid rrule in blackouts[%d]: %w", i, err)
		}
	}

	return nil
}
