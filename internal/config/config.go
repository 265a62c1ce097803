package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Platform roles and parameters. Identities are 32-char hex like
	// every other identity in the system.
	PlatformFeeBps    int64
	PlatformAccountID string
	GracePeriodDays   int
	MatcherID         string
	OperatorID        string
	RegistryOwnerID   string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "peerfund"),
		MySQLUser: getenv("MYSQL_USER", "peerfund"),
		MySQLPass: getenv("MYSQL_PASS", "peerfund"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,

		PlatformFeeBps:    100,
		PlatformAccountID: getenv("PLATFORM_ACCOUNT_ID", ""),
		GracePeriodDays:   30,
		MatcherID:         getenv("MATCHER_ID", ""),
		OperatorID:        getenv("OPERATOR_ID", ""),
		RegistryOwnerID:   getenv("REGISTRY_OWNER_ID", ""),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("PLATFORM_FEE_BPS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.PlatformFeeBps = n
		}
	}
	if v := os.Getenv("GRACE_PERIOD_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.GracePeriodDays = n
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.PlatformFeeBps < 0 || c.PlatformFeeBps > 10000 {
		return fmt.Errorf("PLATFORM_FEE_BPS out of range: %d", c.PlatformFeeBps)
	}
	if c.GracePeriodDays <= 0 {
		return fmt.Errorf("GRACE_PERIOD_DAYS must be positive: %d", c.GracePeriodDays)
	}
	if c.MatcherID == "" || c.OperatorID == "" || c.RegistryOwnerID == "" || c.PlatformAccountID == "" {
		return errors.New("missing role identities (MATCHER_ID/OPERATOR_ID/REGISTRY_OWNER_ID/PLATFORM_ACCOUNT_ID)")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
