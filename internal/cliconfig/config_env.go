package cliconfig

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when present and --env-file is not given.
const DefaultEnvFile = ".env"

// envVars lists the accepted variables per setting, first match wins.
// The rubrik_cdm_* names are shared with the Rubrik Python SDK.
var envVars = map[string][]string{
	"node-ip":   {"LIVEMOUNT_NODE_IP", "rubrik_cdm_node_ip"},
	"username":  {"LIVEMOUNT_USERNAME", "rubrik_cdm_username"},
	"password":  {"LIVEMOUNT_PASSWORD", "rubrik_cdm_password"},
	"api-token": {"LIVEMOUNT_API_TOKEN", "rubrik_cdm_token"},
}

func lookupEnv(flag string) string {
	for _, name := range envVars[flag] {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ApplyEnvConfig applies configuration from environment variables (LIVEMOUNT_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("node-ip", lookupEnv("node-ip"), &cfg.NodeIP)
	s.setString("username", lookupEnv("username"), &cfg.Username)
	s.setString("password", lookupEnv("password"), &cfg.Password)
	s.setString("api-token", lookupEnv("api-token"), &cfg.APIToken)
	s.setString("format", os.Getenv("LIVEMOUNT_FORMAT"), &cfg.Format)
	s.setString("output-file", os.Getenv("LIVEMOUNT_OUTPUT_FILE"), &cfg.OutputFile)
	s.setString("log-level", os.Getenv("LIVEMOUNT_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("LIVEMOUNT_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBoolFromString("insecure", os.Getenv("LIVEMOUNT_INSECURE"), &cfg.Insecure)

	return nil
}

// LoadDotEnv loads variables from a dotenv file without overriding variables
// that are already set. An empty path loads DefaultEnvFile if it exists; an
// explicit path must exist.
func LoadDotEnv(path string) error {
	if path == "" {
		if !FileExists(DefaultEnvFile) {
			return nil
		}
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
