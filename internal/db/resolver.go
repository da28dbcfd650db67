package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/flrload/internal/config"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// ConnFlags holds the connection flags of the command line. The password
// has no flag; it comes from $PGPASSWORD or the connection string.
type ConnFlags struct {
	Connection string
	Host       string
	Port       int
	Username   string
	Database   string
	SSLMode    string
	AppName    string

	AWSRegion      string
	GoogleInstance string
	AzureTenantID  string
	AzureClientID  string
}

func (f *ConnFlags) hasGranular() bool {
	return f.Host != "" || f.Port != 0 || f.Username != "" || f.SSLMode != ""
}

// Env is the environment consulted during resolution.
type Env map[string]string

// LoadEnv reads the libpq variables, DATABASE_URL, FLRLOAD_CONNECTION_STRING
// and the cloud credential variables from the process environment.
func LoadEnv() Env {
	env := Env{}
	for _, key := range []string{
		"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE", "PGAPPNAME",
		"DATABASE_URL", "FLRLOAD_CONNECTION_STRING",
		"AWS_REGION", "AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
		"USER", "USERNAME",
	} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env
}

// Resolve builds the connection configuration. For each setting the first
// source that provides it wins:
//
//  1. --connection
//  2. FLRLOAD_CONNECTION_STRING, then DATABASE_URL, unless granular flags are set
//  3. granular flags (-h, -p, -U, -d, --sslmode)
//  4. PG* environment variables
//  5. the connection section of flrload.yaml
//  6. localhost:5432, sslmode=prefer
//
// -d overrides the database of a connection string. The cloud flags select an
// IAM auth method; the same fields in flrload.yaml apply when no flag is set.
func Resolve(flags ConnFlags, env Env, file *config.ProjectConfig) (*flrload.ConnectionConfig, error) {
	if flags.Connection != "" && flags.hasGranular() {
		return nil, fmt.Errorf("cannot combine --connection with -h, -p, -U or --sslmode: %w", flrload.ErrInvalidConfig)
	}

	var fc config.ConnectionConfig
	if file != nil {
		fc = file.Connection
	}

	connStr := flags.Connection
	if connStr == "" && !flags.hasGranular() {
		connStr = first(env["FLRLOAD_CONNECTION_STRING"], env["DATABASE_URL"])
	}

	var cfg *flrload.ConnectionConfig
	if connStr != "" {
		parsed, err := ParseConnectionString(connStr)
		if err != nil {
			return nil, fmt.Errorf("invalid connection string: %w", err)
		}
		cfg = parsed
		if flags.Database != "" {
			cfg.Database = flags.Database
		}
	} else {
		cfg = &flrload.ConnectionConfig{AdditionalParams: make(map[string]string)}
		cfg.Host = first(flags.Host, env["PGHOST"], fc.Host, "localhost")
		cfg.Username = first(flags.Username, env["PGUSER"], fc.Username, env["USER"], env["USERNAME"])
		cfg.Password = env["PGPASSWORD"]
		cfg.Database = first(flags.Database, env["PGDATABASE"], fc.Database, "postgres")

		switch {
		case flags.Port != 0:
			cfg.Port = flags.Port
		case env["PGPORT"] != "":
			port, err := strconv.Atoi(env["PGPORT"])
			if err != nil {
				return nil, fmt.Errorf("invalid $PGPORT %q: %w", env["PGPORT"], flrload.ErrInvalidConfig)
			}
			cfg.Port = port
		case fc.Port != 0:
			cfg.Port = fc.Port
		default:
			cfg.Port = 5432
		}
	}

	cfg.SSLMode = first(cfg.SSLMode, flags.SSLMode, env["PGSSLMODE"], fc.SSLMode, "prefer")
	cfg.AppName = first(flags.AppName, cfg.AppName, env["PGAPPNAME"], fc.AppName, "flrload")

	if err := applyAuth(cfg, flags, env, fc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyAuth(cfg *flrload.ConnectionConfig, flags ConnFlags, env Env, fc config.ConnectionConfig) error {
	method, err := config.ParseAuthMethod(fc.AuthMethod)
	if err != nil {
		return err
	}

	cfg.AWSRegion = first(flags.AWSRegion, fc.AWSRegion)
	cfg.GoogleInstance = first(flags.GoogleInstance, fc.GoogleInstance)
	cfg.AzureTenantID = first(flags.AzureTenantID, env["AZURE_TENANT_ID"], fc.AzureTenantID)
	cfg.AzureClientID = first(flags.AzureClientID, env["AZURE_CLIENT_ID"], fc.AzureClientID)
	cfg.AzureClientSecret = env["AZURE_CLIENT_SECRET"]

	switch {
	case flags.AWSRegion != "":
		method = flrload.AuthMethodAWSIAM
	case flags.GoogleInstance != "":
		method = flrload.AuthMethodGoogleIAM
	case flags.AzureTenantID != "" || flags.AzureClientID != "":
		method = flrload.AuthMethodAzureEntraID
	}
	if method == flrload.AuthMethodAWSIAM && cfg.AWSRegion == "" {
		cfg.AWSRegion = env["AWS_REGION"]
	}

	cfg.AuthMethod = method
	return nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
