// config/config.go
package config

import (
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// AdminConfig is the seeded administrator account. Credentials live here,
// injected at startup, never in code.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// BookingConfig tunes the attendance state machine.
type BookingConfig struct {
	// AttendanceWindowHours is how long after booking the first check-in
	// must happen. Zero means the 24h default.
	AttendanceWindowHours int `mapstructure:"attendanceWindowHours"`
	// SweepIntervalSeconds is how often the expiry sweeper runs.
	SweepIntervalSeconds int `mapstructure:"sweepIntervalSeconds"`
}

func (b BookingConfig) AttendanceWindow() time.Duration {
	return time.Duration(b.AttendanceWindowHours) * time.Hour
}

func (b BookingConfig) SweepInterval() time.Duration {
	return time.Duration(b.SweepIntervalSeconds) * time.Second
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	S3      S3Config      `mapstructure:"s3"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Booking BookingConfig `mapstructure:"booking"`
}

// LoadConfig reads configuration from config.yaml and overrides it with
// environment variables. A missing file is fine; env vars alone suffice.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("s3.bucket", "S3_BUCKET")
	viper.BindEnv("s3.region", "S3_REGION")
	viper.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	viper.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	viper.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	viper.BindEnv("admin.email", "ADMIN_EMAIL")
	viper.BindEnv("admin.password", "ADMIN_PASSWORD")
	viper.BindEnv("booking.attendanceWindowHours", "BOOKING_ATTENDANCE_WINDOW_HOURS")
	viper.BindEnv("booking.sweepIntervalSeconds", "BOOKING_SWEEP_INTERVAL_SECONDS")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("mongo.dbName", "stallmarket")
	viper.SetDefault("booking.attendanceWindowHours", 24)
	viper.SetDefault("booking.sweepIntervalSeconds", 60)

	err = viper.ReadInConfig()
	if err != nil {
		// Only fail on errors other than "file not found".
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return
}
