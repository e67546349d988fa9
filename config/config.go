// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"corsOrigins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	MaxPhotoBytes   int64         `mapstructure:"maxPhotoBytes"`
	MaxPhotoPixels  int64         `mapstructure:"maxPhotoPixels"`
}

type StoreConfig struct {
	// Driver is "mongo" or "memory".
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI     string        `mapstructure:"uri"`
	DBName  string        `mapstructure:"dbName"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
	// Enforce makes mutations fail without a valid bearer token.
	Enforce bool `mapstructure:"enforce"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
	// Endpoint and UsePathStyle allow S3-compatible stores such as MinIO.
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"usePathStyle"`
}

type DashboardConfig struct {
	AlertLimit          int           `mapstructure:"alertLimit"`
	PollInterval        time.Duration `mapstructure:"pollInterval"`
	RequireResolvedHive bool          `mapstructure:"requireResolvedHive"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ClientConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	S3        S3Config        `mapstructure:"s3"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Log       LogConfig       `mapstructure:"log"`
	Client    ClientConfig    `mapstructure:"client"`
}

var envBindings = map[string]string{
	"server.port":                   "SERVER_PORT",
	"server.corsOrigins":            "SERVER_CORS_ORIGINS",
	"store.driver":                  "STORE_DRIVER",
	"mongo.uri":                     "MONGO_URI",
	"mongo.dbName":                  "MONGO_DBNAME",
	"mongo.timeout":                 "MONGO_TIMEOUT",
	"jwt.secret":                    "JWT_SECRET",
	"jwt.expiration":                "JWT_EXPIRATION",
	"jwt.enforce":                   "JWT_ENFORCE",
	"s3.bucket":                     "S3_BUCKET",
	"s3.region":                     "S3_REGION",
	"s3.accessKeyID":                "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey":            "S3_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain":           "S3_CLOUDFRONT_DOMAIN",
	"s3.endpoint":                   "S3_ENDPOINT",
	"s3.usePathStyle":               "S3_USE_PATH_STYLE",
	"dashboard.alertLimit":          "DASHBOARD_ALERT_LIMIT",
	"dashboard.pollInterval":        "DASHBOARD_POLL_INTERVAL",
	"dashboard.requireResolvedHive": "DASHBOARD_REQUIRE_RESOLVED_HIVE",
	"log.level":                     "LOG_LEVEL",
	"log.format":                    "LOG_FORMAT",
	"client.endpoint":               "APIARY_ENDPOINT",
	"client.token":                  "APIARY_TOKEN",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.corsOrigins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.maxPhotoBytes", 10<<20)
	v.SetDefault("server.maxPhotoPixels", 40_000_000)
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbName", "apiario")
	v.SetDefault("mongo.timeout", 10*time.Second)
	v.SetDefault("jwt.expiration", 24*time.Hour)
	v.SetDefault("jwt.enforce", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("dashboard.alertLimit", 5)
	v.SetDefault("dashboard.pollInterval", 10*time.Second)
	v.SetDefault("dashboard.requireResolvedHive", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("client.endpoint", "http://localhost:8080/graphql")
}

// LoadConfig reads config.yaml from path, then .env, then the process environment.
// A missing config file or .env is not an error.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.AutomaticEnv()
	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return config, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("reading config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decoding config: %w", err)
	}

	return config, config.Validate()
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "mongo":
		if c.Mongo.URI == "" || c.Mongo.DBName == "" {
			return fmt.Errorf("mongo.uri and mongo.dbName are required for the mongo store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.JWT.Enforce && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.enforce requires jwt.secret")
	}
	if c.Dashboard.AlertLimit < 0 {
		return fmt.Errorf("dashboard.alertLimit must not be negative")
	}
	return nil
}
