package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
api:
  environment: production
  port: "9090"
  base_url: events.example.com
  allowed_cors_domains:
    - https://app.example.com
  jwt_signing_key: 0123456789abcdef0123
  jwt_ttl: 2h
postgres:
  host: db
  db: hackathons
admin:
  email: root@example.com
  password: Secret123
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "production", conf.API.Environment)
	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, []string{"https://app.example.com"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, 2*time.Hour, conf.API.JWTTTL)
	assert.False(t, conf.API.ExposeErrorDetails)
	assert.Equal(t, "release", conf.Gin.Mode)
	assert.Equal(t, "db", conf.Postgres.Host)
	assert.Equal(t, "5432", conf.Postgres.Port)
	assert.Equal(t, "hackathons", conf.Postgres.DB)
	assert.Equal(t, "root@example.com", conf.Admin.Email)
	assert.Equal(t, "Administrator", conf.Admin.Name)
	assert.Equal(t, 256, conf.Ticket.QRSize)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("API_PORT", "7070")
	t.Setenv("POSTGRES_PASSWORD", "from-env")

	conf, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "7070", conf.API.Port)
	assert.Equal(t, "from-env", conf.Postgres.Password)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"short signing key": `
api:
  environment: production
  jwt_signing_key: short
`,
		"unknown environment": `
api:
  environment: staging
  jwt_signing_key: 0123456789abcdef0123
`,
		"qr size out of range": `
api:
  jwt_signing_key: 0123456789abcdef0123
ticket:
  qr_size: 10
`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))

			assert.Error(t, err)
		})
	}
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	changes := make(chan *AppConfig, 1)
	err := Watch(path, func(c *AppConfig) {
		select {
		case changes <- c:
		default:
		}
	}, func(error) {})
	require.NoError(t, err)

	updated := sampleYAML + "  name: Root\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	select {
	case conf := <-changes:
		assert.Equal(t, "Root", conf.Admin.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
