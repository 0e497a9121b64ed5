package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vvangelov/brregservice/internal"
)

func TestLoad(t *testing.T) {
	coreEnv := CoreEnv{
		Env:       "brreg-dev",
		AWSRegion: "eu-north-1",
		Port:      3000,
		Service:   "test",
		LogLevel:  "info",
	}
	tests := []struct {
		name    string
		want    *Config
		wantErr bool
		envs    map[string]string
	}{
		{
			name:    "fail local",
			wantErr: true,
			envs: map[string]string{
				"SERVICE":    "test",
				"ENV":        "brreg-dev",
				"LOCAL":      "XXX",
				"AWS_REGION": "eu-north-1",
			},
		},
		{
			name:    "fail not local",
			wantErr: true,
			envs: map[string]string{
				"SERVICE":    "test",
				"ENV":        "brreg-dev",
				"LOCAL":      "false",
				"AWS_REGION": "eu-north-1",
			},
		},
		{
			name:    "fail missing service",
			wantErr: true,
			envs: map[string]string{
				"ENV":        "brreg-dev",
				"LOCAL":      "true",
				"AWS_REGION": "eu-north-1",
			},
		},
		{
			name:    "fail unknown driver",
			wantErr: true,
			envs: map[string]string{
				"SERVICE":         "test",
				"ENV":             "brreg-dev",
				"LOCAL":           "true",
				"AWS_REGION":      "eu-north-1",
				"DATABASE_DRIVER": "oracle",
			},
		},
		{
			name: "is local",
			want: &Config{
				CoreEnv:                coreEnv,
				Local:                  true,
				DatabaseDriver:         DriverSQLite,
				SQLitePath:             "./data/brreg.db",
				RegistryBaseURL:        internal.RegistryEndpoint,
				RegistryConnectTimeout: 3 * time.Second,
				RegistryTimeout:        15 * time.Second,
				LockTTL:                10 * time.Second,
			},
			envs: map[string]string{
				"SERVICE":    "test",
				"ENV":        "brreg-dev",
				"LOCAL":      "true",
				"AWS_REGION": "eu-north-1",
			},
		},
		{
			name: "postgres with overrides",
			want: &Config{
				CoreEnv:                coreEnv,
				DatabaseDriver:         DriverPostgres,
				DatabaseURL:            "postgres://brreg@localhost:5432/brreg",
				SQLitePath:             "./data/brreg.db",
				RegistryBaseURL:        "https://data.brreg.no/enhetsregisteret/api/enheter",
				RegistryConnectTimeout: time.Second,
				RegistryTimeout:        15 * time.Second,
				RedisAddr:              "localhost:6379",
				LockTTL:                10 * time.Second,
			},
			envs: map[string]string{
				"SERVICE":                  "test",
				"ENV":                      "brreg-dev",
				"AWS_REGION":               "eu-north-1",
				"DATABASE_URL":             "postgres://brreg@localhost:5432/brreg",
				"REGISTRY_BASE_URL":        "https://data.brreg.no/enhetsregisteret/api/enheter",
				"REGISTRY_CONNECT_TIMEOUT": "1s",
				"REDIS_ADDR":               "localhost:6379",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for key, val := range tt.envs {
				os.Setenv(key, val)
				defer os.Unsetenv(key)
			}
			c, err := Load()
			if tt.wantErr {
				assert.NotNil(t, err, "error expected")
			} else {
				assert.Nil(t, err, "unexpected error")
			}
			assert.Equal(t, tt.want, c, "unexpected values")
		})
	}
}
