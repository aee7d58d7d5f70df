package clickhouse

import (
	"net/url"
	"strconv"
	"time"

	"github.com/creasty/defaults"
)

// Config describes how to reach ClickHouse. Zero fields take the `default` tag.
type Config struct {
	Host        string
	Port        int           `default:"9000"`
	Database    string        `default:"default"`
	User        string        `default:"default"`
	Password    string
	UseHTTP     bool
	DialTimeout time.Duration `default:"5s"`
	ReadTimeout time.Duration `default:"30s"`
	PingTimeout time.Duration `default:"5s"`
	MaxExecTime time.Duration

	MaxOpenConns    int           `default:"10"`
	MaxIdleConns    int           `default:"5"`
	ConnMaxLifetime time.Duration `default:"5m"`
}

func (c *Config) withDefaults() error {
	return defaults.Set(c)
}

// BuildDSN renders a clickhouse-go DSN. Native protocol unless UseHTTP is set.
func BuildDSN(cfg Config) string {
	u := url.URL{
		Scheme: "clickhouse",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:   "/" + cfg.Database,
	}
	if cfg.UseHTTP {
		u.Scheme = "http"
	}

	q := url.Values{}
	for key, d := range map[string]time.Duration{
		"dial_timeout": cfg.DialTimeout,
		"read_timeout": cfg.ReadTimeout,
	} {
		if d > 0 {
			q.Set(key, d.String())
		}
	}
	if cfg.MaxExecTime > 0 {
		q.Set("max_execution_time", strconv.Itoa(int(cfg.MaxExecTime/time.Second)))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
