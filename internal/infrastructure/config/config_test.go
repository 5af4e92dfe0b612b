package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o600))
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := load("config", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.False(t, cfg.MQ.Enabled)
	assert.Equal(t, "bookreview.events", cfg.MQ.Exchange)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := writeConfig(t, "config", `
server:
  port: 9090
  mode: debug
database:
  driver: mysql
  host: db
  port: 3306
  user: app
  password: secret
  dbname: bookreview
  charset: utf8mb4
  parse_time: true
  loc: Asia/Shanghai
jwt:
  secret: file-secret
`)
	t.Setenv("BOOKREVIEW_JWT_SECRET", "env-secret")
	t.Setenv("BOOKREVIEW_SERVER_PORT", "7070")

	cfg, err := load("config", dir)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t,
		"app:secret@tcp(db:3306)/bookreview?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai&clientFoundRows=true",
		cfg.Database.DSN())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := DatabaseConfig{Driver: DriverPostgres, Host: "pg", Port: 5432, User: "u", Password: "p", DBName: "books", SSLMode: "disable"}
	assert.Equal(t, "host=pg port=5432 user=u password=p dbname=books sslmode=disable", pg.DSN())

	lite := DatabaseConfig{Driver: DriverSQLite, DBName: "file::memory:?cache=shared"}
	assert.Equal(t, "file::memory:?cache=shared", lite.DSN())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080, Mode: "debug"},
			Database: DatabaseConfig{Driver: DriverMySQL},
			JWT:      JWTConfig{Secret: "s", AccessTokenExpire: time.Hour},
			Tracing:  TracingConfig{SampleRatio: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"合法配置", func(*Config) {}, true},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, false},
		{"未知运行模式", func(c *Config) { c.Server.Mode = "prod" }, false},
		{"未知驱动", func(c *Config) { c.Database.Driver = "oracle" }, false},
		{"生产环境默认密钥", func(c *Config) { c.Server.Mode = "release"; c.JWT.Secret = defaultSecret }, false},
		{"Token有效期为0", func(c *Config) { c.JWT.AccessTokenExpire = 0 }, false},
		{"采样率越界", func(c *Config) { c.Tracing.SampleRatio = 1.5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
