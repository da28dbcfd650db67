package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/flrload/pkg/flrload"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))
	return dir
}

func TestLoad_AllFields(t *testing.T) {
	dir := writeConfig(t, `connection:
  host: myhost
  port: 5433
  username: myuser
  database: census
  sslmode: require
  application_name: flrload-nightly
  auth_method: aws
  aws_region: us-west-2

source: data/usa_0002.dat
layout_file: layouts/acs.yaml
batch_size: 10000
validate: true
timeout: 10m
tables:
  household: hh_2015
  person: pp_2015
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "myhost", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "myuser", cfg.Connection.Username)
	assert.Equal(t, "census", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "flrload-nightly", cfg.Connection.AppName)
	assert.Equal(t, "us-west-2", cfg.Connection.AWSRegion)
	assert.Equal(t, "data/usa_0002.dat", cfg.Source)
	assert.Equal(t, filepath.Join(dir, "layouts/acs.yaml"), cfg.LayoutFile)
	assert.Equal(t, 10000, cfg.BatchSize)
	assert.True(t, cfg.Validate)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, timeout)

	assert.Equal(t, map[flrload.RecordType]string{"household": "hh_2015", "person": "pp_2015"}, cfg.TableMap())
}

func TestLoad_MinimalYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "validate: true\n"))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Connection.Host)
	assert.Equal(t, 0, cfg.BatchSize)
	assert.Nil(t, cfg.TableMap())
	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, timeout)
}

func TestLoad_AbsoluteLayoutFileKept(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "layout.yaml")
	cfg, err := Load(writeConfig(t, "layout_file: "+abs+"\n"))
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.LayoutFile)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{{invalid"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, `batch_size: -1
timeout: soon
connection:
  auth_method: kerberos
tables:
  person: ""
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, flrload.ErrInvalidConfig)
	for _, want := range []string{"batch_size", "timeout", "kerberos", "tables.person"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseAuthMethod(t *testing.T) {
	tests := map[string]flrload.AuthMethod{
		"":         flrload.AuthMethodStandard,
		"password": flrload.AuthMethodStandard,
		"AWS":      flrload.AuthMethodAWSIAM,
		"gcp":      flrload.AuthMethodGoogleIAM,
		"entra-id": flrload.AuthMethodAzureEntraID,
	}
	for in, want := range tests {
		got, err := ParseAuthMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
