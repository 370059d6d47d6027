package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvironDevelopmentDefaults(t *testing.T) {
	req := require.New(t)

	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ALLOWED_ORIGINS", " http://localhost:5173 , ,https://chat.example.com")

	cfg, err := FromEnviron()
	req.NoError(err)

	req.Equal(8080, cfg.Port)
	req.Equal(DriverPostgres, cfg.StoreDriver)
	req.Equal(devDatabaseDSN, cfg.DatabaseDSN)
	req.Equal(devJWTSecret, cfg.JWTSecret)
	req.Equal(720*time.Hour, cfg.TokenTTL)
	req.Equal(5*time.Second, cfg.SendTimeout)
	req.Equal([]string{"http://localhost:5173", "https://chat.example.com"}, cfg.AllowedOrigins)
	req.False(cfg.S3Configured())
}

func TestFromEnvironProductionRequiresSecrets(t *testing.T) {
	req := require.New(t)

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("S3_BUCKET_NAME", "")
	_, err := FromEnviron()
	req.ErrorContains(err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = FromEnviron()
	req.ErrorContains(err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://db/dmchat")
	_, err = FromEnviron()
	req.ErrorContains(err, "S3_BUCKET_NAME")

	t.Setenv("S3_BUCKET_NAME", "dmchat")
	t.Setenv("S3_ENDPOINT", "https://s3.example.com")
	t.Setenv("S3_ACCESS_KEY_ID", "id")
	t.Setenv("S3_SECRET_ACCESS_KEY", "key")
	cfg, err := FromEnviron()
	req.NoError(err)
	req.False(cfg.IsDevelopment())
}

func TestFromEnvironRejectsBadValues(t *testing.T) {
	req := require.New(t)

	t.Setenv("PORT", "80")
	_, err := FromEnviron()
	req.ErrorContains(err, "outside the recommended range")

	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "mongo")
	_, err = FromEnviron()
	req.ErrorContains(err, "STORE_DRIVER")

	t.Setenv("STORE_DRIVER", DriverBadger)
	t.Setenv("BADGER_PATH", t.TempDir())
	cfg, err := FromEnviron()
	req.NoError(err)
	req.Equal(DriverBadger, cfg.StoreDriver)
}
