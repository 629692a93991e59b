package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	HTTP    HTTP    `toml:"http"`
	Storage Storage `toml:"storage"`
	Grading Grading `toml:"grading"`
	Moss    Moss    `toml:"moss"`

	// JwtKey is only read from the environment.
	JwtKey string `toml:"-"`
}

type HTTP struct {
	Address        string   `toml:"address"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type Storage struct {
	Backend     string `toml:"backend"` // "dir" or "s3"
	Dir         string `toml:"dir"`
	S3Bucket    string `toml:"s3_bucket"`
	S3Region    string `toml:"s3_region"`
	S3Endpoint  string `toml:"s3_endpoint"`
	S3PathStyle bool   `toml:"s3_path_style"`
}

type Grading struct {
	// RunAPIURL replaces the placeholder in the bundled runner script.
	RunAPIURL        string `toml:"run_api_url"`
	SubmQueueURL     string `toml:"subm_queue_url"`
	ResponseQueueURL string `toml:"response_queue_url"`
	SqsRegion        string `toml:"sqs_region"`
}

type Moss struct {
	UserID     string `toml:"user_id"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Language   string `toml:"language"`
	TimeoutSec int    `toml:"timeout_sec"`
}

func (m Moss) Timeout() time.Duration {
	return time.Duration(m.TimeoutSec) * time.Second
}

func Default() Config {
	return Config{
		HTTP: HTTP{
			Address:        ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Storage: Storage{
			Backend:  "dir",
			Dir:      "./data",
			S3Region: "eu-central-1",
		},
		Grading: Grading{
			RunAPIURL: "http://localhost:8080/api/",
			SqsRegion: "eu-central-1",
		},
		Moss: Moss{
			Host:       "moss.stanford.edu",
			Port:       7690,
			Language:   "python",
			TimeoutSec: 300,
		},
	}
}

// Load reads the optional TOML file at path, then .env, then the environment.
// Later sources win.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err == nil {
			if err := toml.Unmarshal(content, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setStr := func(dst *string, name string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	setStr(&cfg.HTTP.Address, "AUTOGRADE_HTTP_ADDRESS")
	if v, ok := os.LookupEnv("AUTOGRADE_ALLOWED_ORIGINS"); ok {
		cfg.HTTP.AllowedOrigins = strings.Split(v, ",")
	}

	setStr(&cfg.Storage.Backend, "AUTOGRADE_STORAGE_BACKEND")
	setStr(&cfg.Storage.Dir, "AUTOGRADE_STORAGE_DIR")
	setStr(&cfg.Storage.S3Bucket, "AUTOGRADE_S3_BUCKET")
	setStr(&cfg.Storage.S3Region, "AUTOGRADE_S3_REGION")
	setStr(&cfg.Storage.S3Endpoint, "AUTOGRADE_S3_ENDPOINT")
	if v, ok := os.LookupEnv("AUTOGRADE_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to parse AUTOGRADE_S3_PATH_STYLE: %w", err)
		}
		cfg.Storage.S3PathStyle = b
	}

	setStr(&cfg.Grading.RunAPIURL, "RUN_API_URL")
	setStr(&cfg.Grading.SubmQueueURL, "SUBM_SQS_QUEUE_URL")
	setStr(&cfg.Grading.ResponseQueueURL, "RESPONSE_SQS_URL")
	setStr(&cfg.Grading.SqsRegion, "AUTOGRADE_SQS_REGION")

	setStr(&cfg.Moss.UserID, "MOSS_USER_ID")
	setStr(&cfg.Moss.Host, "MOSS_HOST")
	setStr(&cfg.Moss.Language, "MOSS_LANGUAGE")
	if v, ok := os.LookupEnv("MOSS_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse MOSS_PORT: %w", err)
		}
		cfg.Moss.Port = port
	}
	if v, ok := os.LookupEnv("MOSS_TIMEOUT_SEC"); ok {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse MOSS_TIMEOUT_SEC: %w", err)
		}
		cfg.Moss.TimeoutSec = sec
	}

	setStr(&cfg.JwtKey, "JWT_KEY")
	return nil
}

func (c Config) Validate() error {
	if c.JwtKey == "" {
		return errors.New("JWT_KEY is not set")
	}
	switch c.Storage.Backend {
	case "dir":
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the dir backend")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errors.New("storage.s3_bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Grading.RunAPIURL == "" {
		return errors.New("grading.run_api_url is required")
	}
	return nil
}
