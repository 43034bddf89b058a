package bank

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppConfig is the resolved runtime configuration: absolute data-file
// paths plus the cipher and ID settings.
type AppConfig struct {
	NodeID           int64
	AdminsFile       string
	ClientsFile      string
	CurrenciesFile   string
	LedgerFile       string
	TransferLogFile  string
	AdminSessionLog  string
	ClientSessionLog string
	ExportDir        string
	CipherScheme     string
	CipherShift      int
	CipherPassphrase string
	ENV              string
}

type Config struct {
	NodeID           int64  `yaml:"nodeID"`
	DataDir          string `yaml:"dataDir"`
	ExportDir        string `yaml:"exportDir"`
	CipherScheme     string `yaml:"cipherScheme"`
	CipherShift      int    `yaml:"cipherShift"`
	CipherPassphrase string `yaml:"cipherPassphrase"`
}

// LoadConfig reads config/bankoffice.yaml, then merges an APP_ENV override
// file (config/bankoffice.<env>.yaml) on top when one exists.
func LoadConfig() (*AppConfig, error) {
	baseConfigFile, err := os.ReadFile("config/bankoffice.yaml")

	if err != nil {
		return nil, fmt.Errorf("read base config failed: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(baseConfigFile, &config)

	if err != nil {
		return nil, fmt.Errorf("parse base config failed: %w", err)
	}

	err = validateConfig(config)

	if err != nil {
		return nil, err
	}

	appEnv := os.Getenv("APP_ENV")

	if appEnv == "" {
		return toAppConfig(config, "local"), nil
	}

	overrideConfigFile, err := os.ReadFile("config/bankoffice." + appEnv + ".yaml")

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return toAppConfig(config, appEnv), nil
		}

		return nil, fmt.Errorf("read override config failed: %w", err)
	}

	var overrideConfig Config
	err = yaml.Unmarshal(overrideConfigFile, &overrideConfig)

	if err != nil {
		return nil, fmt.Errorf("parse override config failed: %w", err)
	}

	if overrideConfig.NodeID != 0 {
		config.NodeID = overrideConfig.NodeID
	}
	if overrideConfig.DataDir != "" {
		config.DataDir = overrideConfig.DataDir
	}
	if overrideConfig.ExportDir != "" {
		config.ExportDir = overrideConfig.ExportDir
	}
	if overrideConfig.CipherScheme != "" {
		config.CipherScheme = overrideConfig.CipherScheme
	}
	if overrideConfig.CipherShift != 0 {
		config.CipherShift = overrideConfig.CipherShift
	}
	if overrideConfig.CipherPassphrase != "" {
		config.CipherPassphrase = overrideConfig.CipherPassphrase
	}

	err = validateConfig(config)

	if err != nil {
		return nil, err
	}

	return toAppConfig(config, appEnv), nil
}

func validateConfig(config Config) error {
	if config.DataDir == "" {
		return errors.New("data directory is not set")
	}

	if config.CipherScheme == "aesgcm" && config.CipherPassphrase == "" {
		return errors.New("aesgcm cipher requires a passphrase")
	}

	return nil
}

func toAppConfig(config Config, env string) *AppConfig {
	exportDir := config.ExportDir
	if exportDir == "" {
		exportDir = filepath.Join(config.DataDir, "exports")
	}

	// Admins.text keeps its historical extension; every other file is .txt.
	return &AppConfig{
		NodeID:           config.NodeID,
		AdminsFile:       filepath.Join(config.DataDir, "Admins.text"),
		ClientsFile:      filepath.Join(config.DataDir, "Clients.txt"),
		CurrenciesFile:   filepath.Join(config.DataDir, "Currencies.txt"),
		LedgerFile:       filepath.Join(config.DataDir, "AllTransactions.txt"),
		TransferLogFile:  filepath.Join(config.DataDir, "Transactions.txt"),
		AdminSessionLog:  filepath.Join(config.DataDir, "AdminsSessionLog.txt"),
		ClientSessionLog: filepath.Join(config.DataDir, "ClientsSessionLog.txt"),
		ExportDir:        exportDir,
		CipherScheme:     config.CipherScheme,
		CipherShift:      config.CipherShift,
		CipherPassphrase: config.CipherPassphrase,
		ENV:              env,
	}
}
