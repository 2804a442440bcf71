package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fivetwenty-io/amocrm-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file.
type Config struct {
	BaseURL        string     `json:"base_url,omitempty"         yaml:"base_url,omitempty"`
	Generation     string     `json:"generation,omitempty"       yaml:"generation,omitempty"`
	ClientID       string     `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	ClientSecret   string     `json:"client_secret,omitempty"    yaml:"client_secret,omitempty"`
	RedirectURI    string     `json:"redirect_uri,omitempty"     yaml:"redirect_uri,omitempty"`
	AccessToken    string     `json:"access_token,omitempty"     yaml:"access_token,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
}

// settable maps the keys accepted by `config set` to their setters.
var settable = map[string]func(*Config, string){
	"base_url":      func(c *Config, v string) { c.BaseURL = v },
	"generation":    func(c *Config, v string) { c.Generation = v },
	"client_id":     func(c *Config, v string) { c.ClientID = v },
	"client_secret": func(c *Config, v string) { c.ClientSecret = v },
	"redirect_uri":  func(c *Config, v string) { c.RedirectURI = v },
}

var tokenKeys = map[string]bool{
	"access_token":     true,
	"refresh_token":    true,
	"token_expires_at": true,
	"last_refreshed":   true,
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "View and modify the amoCRM CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			masked := *config

			if masked.ClientSecret != "" {
				masked.ClientSecret = constants.MaskedSecret
			}

			if masked.AccessToken != "" {
				masked.AccessToken = constants.MaskedSecret
			}

			if masked.RefreshToken != "" {
				masked.RefreshToken = constants.MaskedSecret
			}

			switch viper.GetString("output") {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(masked)
			case constants.FormatYAML:
				return yaml.NewEncoder(os.Stdout).Encode(masked)
			default:
				return displayConfigTable(&masked)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one of base_url, generation, client_id, client_secret, redirect_uri",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if err := setConfigValue(config, args[0], args[1]); err != nil {
				return err
			}

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if tokenKeys[args[0]] {
				config.AccessToken = ""
				config.RefreshToken = ""
				config.TokenExpiresAt = nil
				config.LastRefreshed = nil
			} else if err := setConfigValue(config, args[0], ""); err != nil {
				return err
			}

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	if tokenKeys[key] {
		return fmt.Errorf("%s: %w", key, constants.ErrConfigKeyReadOnly)
	}

	setter, ok := settable[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, constants.ErrUnknownConfigKey)
	}

	setter(config, value)

	return nil
}

func loadConfig() *Config {
	config := &Config{
		BaseURL:      viper.GetString("base_url"),
		Generation:   viper.GetString("generation"),
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		RedirectURI:  viper.GetString("redirect_uri"),
		AccessToken:  viper.GetString("access_token"),
		RefreshToken: viper.GetString("refresh_token"),
	}

	if expiresAt := viper.GetTime("token_expires_at"); !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	if refreshed := viper.GetTime("last_refreshed"); !refreshed.IsZero() {
		config.LastRefreshed = &refreshed
	}

	return config
}

func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".amocrm")

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	syncViper(config)

	return nil
}

// syncViper keeps the in-process view consistent with the saved file.
func syncViper(config *Config) {
	viper.Set("base_url", config.BaseURL)
	viper.Set("generation", config.Generation)
	viper.Set("client_id", config.ClientID)
	viper.Set("client_secret", config.ClientSecret)
	viper.Set("redirect_uri", config.RedirectURI)
	viper.Set("access_token", config.AccessToken)
	viper.Set("refresh_token", config.RefreshToken)

	if config.TokenExpiresAt != nil {
		viper.Set("token_expires_at", *config.TokenExpiresAt)
	} else {
		viper.Set("token_expires_at", nil)
	}

	if config.LastRefreshed != nil {
		viper.Set("last_refreshed", *config.LastRefreshed)
	} else {
		viper.Set("last_refreshed", nil)
	}
}

func displayConfigTable(config *Config) error {
	rows := map[string]string{
		"base_url":      config.BaseURL,
		"generation":    config.Generation,
		"client_id":     config.ClientID,
		"client_secret": config.ClientSecret,
		"redirect_uri":  config.RedirectURI,
		"access_token":  config.AccessToken,
		"refresh_token": config.RefreshToken,
	}

	if config.TokenExpiresAt != nil {
		rows["token_expires_at"] = config.TokenExpiresAt.Format(time.RFC3339)
	}

	if config.LastRefreshed != nil {
		rows["last_refreshed"] = config.LastRefreshed.Format(time.RFC3339)
	}

	keys := make([]string, 0, len(rows))
	for key := range rows {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	for _, key := range keys {
		_ = table.Append(key, formatConfigValue(rows[key]))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
