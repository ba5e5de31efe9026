package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is passed to envconfig; the variable names below are already fully
// qualified so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Ingest IngestConfig
	Labels LabelsConfig
	Export ExportConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKROOM_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOCKROOM_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOCKROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"STOCKROOM_DB_DRIVER" default:"sqlite"`

	// SQLitePath is the ledger file used by the default sqlite driver.
	SQLitePath string `envconfig:"STOCKROOM_DB_PATH" default:"stockroom.sqlite"`

	// DSN is used as-is for the postgres driver; the legacy host/user fields
	// below are assembled into a DSN when it is empty.
	DSN            string `envconfig:"STOCKROOM_DB_DSN"`
	LegacyHost     string `envconfig:"STOCKROOM_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKROOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKROOM_DB_USER"`
	LegacyPassword string `envconfig:"STOCKROOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKROOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKROOM_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"STOCKROOM_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type IngestConfig struct {
	// QuarantineDirName is created next to each duplicate receipt file.
	QuarantineDirName string `envconfig:"STOCKROOM_INGEST_QUARANTINE_DIR" default:"duplicates"`
}

type LabelsConfig struct {
	// PreferExternal selects the external tracker URL over the vendor
	// purchase URL when both are available for a QR target.
	PreferExternal      bool   `envconfig:"STOCKROOM_LABEL_PREFER_EXTERNAL" default:"false"`
	ExternalURLTemplate string `envconfig:"STOCKROOM_LABEL_EXTERNAL_URL_TEMPLATE"`
	ShortMaxLen         int    `envconfig:"STOCKROOM_LABEL_SHORT_MAX_LEN" default:"42"`
}

type ExportConfig struct {
	Dir string `envconfig:"STOCKROOM_EXPORT_DIR" default:"exports"`
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() || db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"STOCKROOM_DB_HOST": db.LegacyHost,
		"STOCKROOM_DB_USER": db.LegacyUser,
		"STOCKROOM_DB_NAME": db.LegacyName,
	}
	for _, name := range []string{"STOCKROOM_DB_HOST", "STOCKROOM_DB_USER", "STOCKROOM_DB_NAME"} {
		if legacyValues[name] == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either STOCKROOM_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
