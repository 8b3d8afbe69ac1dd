// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

// appConfigKeys declares the app-specific configuration surface.
// Values come from RINGIHUB_* environment variables, config files, or
// flags, with these defaults.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection string"},
	{Name: "mongo_database", Default: "ringihub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "Maximum MongoDB connection pool size"},
	{Name: "mongo_min_pool_size", Default: 0, Desc: "Minimum MongoDB connection pool size"},

	{Name: "session_key", Default: "", Desc: "Secret key for signing session cookies"},
	{Name: "session_name", Default: "ringihub-session", Desc: "Cookie name for sessions"},
	{Name: "session_domain", Default: "", Desc: "Cookie domain (blank = current host)"},

	{Name: "storage_local_path", Default: "./uploads/attachments", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files/attachments", Desc: "URL prefix for serving local files"},

	{Name: "timeout_ping", Default: "2s", Desc: "Health-check ping timeout"},
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for multi-document operations"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for searches and uploads"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config
// files, RINGIHUB_* environment variables, and command-line flags,
// merging with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "RINGIHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		TimeoutPing:   appValues.String("timeout_ping"),
		TimeoutShort:  appValues.String("timeout_short"),
		TimeoutMedium: appValues.String("timeout_medium"),
		TimeoutLong:   appValues.String("timeout_long"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any
// backend is touched.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key must be set")
	}

	durs, err := parseTimeouts(appCfg)
	if err != nil {
		return err
	}
	timeouts.Configure(durs[0], durs[1], durs[2], durs[3])
	return nil
}

func parseTimeouts(appCfg AppConfig) ([4]time.Duration, error) {
	var out [4]time.Duration
	for i, raw := range []string{appCfg.TimeoutPing, appCfg.TimeoutShort, appCfg.TimeoutMedium, appCfg.TimeoutLong} {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return out, fmt.Errorf("invalid timeout %q: %w", raw, err)
		}
		out[i] = d
	}
	return out, nil
}
