package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	DBUrl    string `mapstructure:"DB_URL"`
	RedisUrl string `mapstructure:"REDIS_URL"`

	GeometryPath         string `mapstructure:"GEOMETRY_PATH"`
	GeometryNameProperty string `mapstructure:"GEOMETRY_NAME_PROPERTY"`

	RestCountriesURL string `mapstructure:"REST_COUNTRIES_URL"`
	PixabayURL       string `mapstructure:"PIXABAY_URL"`
	PixabayAPIKey    string `mapstructure:"PIXABAY_API_KEY"`
	PixabayPerPage   int    `mapstructure:"PIXABAY_PER_PAGE"`

	MarginFactor     float64 `mapstructure:"MARGIN_FACTOR"`
	DefaultScale     float64 `mapstructure:"DEFAULT_SCALE"`
	DefaultCenterLng float64 `mapstructure:"DEFAULT_CENTER_LNG"`
	DefaultCenterLat float64 `mapstructure:"DEFAULT_CENTER_LAT"`
	MinScale         float64 `mapstructure:"MIN_SCALE"`

	CacheTTL    time.Duration `mapstructure:"CACHE_TTL"`
	SessionTTL  time.Duration `mapstructure:"SESSION_TTL"`
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", ":8080")
	v.SetDefault("DB_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("GEOMETRY_PATH", "data/world.geojson")
	v.SetDefault("GEOMETRY_NAME_PROPERTY", "name")
	v.SetDefault("REST_COUNTRIES_URL", "https://restcountries.com/v3.1")
	v.SetDefault("PIXABAY_URL", "https://pixabay.com/api/")
	v.SetDefault("PIXABAY_API_KEY", "")
	v.SetDefault("PIXABAY_PER_PAGE", 20)
	v.SetDefault("MARGIN_FACTOR", 30.0)
	v.SetDefault("DEFAULT_SCALE", 200.0)
	v.SetDefault("DEFAULT_CENTER_LNG", 0.0)
	v.SetDefault("DEFAULT_CENTER_LAT", 0.0)
	v.SetDefault("MIN_SCALE", 100.0)
	v.SetDefault("CACHE_TTL", "6h")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "atlas.log")
}

// LoadConfig reads .env.<APP_ENV> from the working directory; environment
// variables take precedence over the file.
func LoadConfig() (c Config, err error) {
	return loadFrom(viper.New(), ".")
}

func loadFrom(v *viper.Viper, dir string) (c Config, err error) {
	// Get environment type from ENV variable or use development as default
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	setDefaults(v)

	v.SetConfigName(fmt.Sprintf(".env.%s", env))
	v.SetConfigType("env")
	v.AddConfigPath(dir)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Continue even if file is not found
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	err = v.Unmarshal(&c)
	return
}
