package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServeAddress string `envconfig:"serve_address" default:":8080"`

	DBHost     string `envconfig:"db_host" default:"localhost"`
	DBPort     int    `envconfig:"db_port" default:"3306"`
	DBUser     string `envconfig:"db_user" default:"root"`
	DBPassword string `envconfig:"db_password" default:""`
	DBName     string `envconfig:"db_name" default:"orderservice"`

	MigrationsPath string `envconfig:"migrations_path" default:"migrations"`
}

func Parse(prefix string) (*Config, error) {
	c := new(Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DSN builds the go-sql-driver data source name. parseTime is required so
// TIMESTAMP columns scan into time.Time.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
