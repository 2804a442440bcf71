package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/amocrm-client/internal/auth"
	"github.com/fivetwenty-io/amocrm-client/internal/constants"
	"github.com/fivetwenty-io/amocrm-client/pkg/amoclient"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		clientID     string
		clientSecret string
		redirectURI  string
		code         string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to an amoCRM account",
		Long: `Authenticate against an amoCRM account.

With --client-id, an authorization code of the integration is exchanged for
an OAuth2 token pair that is refreshed automatically. Without it, a
long-lived access token is stored as is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()
			reader := bufio.NewReader(cmd.InOrStdin())

			config := loadConfig()

			baseURL := config.BaseURL
			if baseURL == "" {
				_, _ = fmt.Fprint(out, "Account (subdomain or URL): ")
				line, _ := reader.ReadString('\n')
				baseURL = strings.TrimSpace(line)
			}

			baseURL, err := amoclient.NormalizeBaseURL(baseURL)
			if err != nil {
				return err
			}

			config.BaseURL = baseURL

			if clientID != "" {
				config.ClientID = clientID
			}

			if clientSecret != "" {
				config.ClientSecret = clientSecret
			}

			if redirectURI != "" {
				config.RedirectURI = redirectURI
			}

			config.AccessToken = ""
			config.RefreshToken = ""
			config.TokenExpiresAt = nil

			if token := viper.GetString("token"); token != "" {
				config.AccessToken = token
			} else if config.ClientID != "" {
				if code == "" {
					code, err = readSecret(out, reader, "Authorization code: ")
					if err != nil {
						return err
					}
				}

				if code == "" {
					return constants.ErrNoCredentials
				}

				// The token manager persists the issued pair on top of what
				// is saved here.
				if err := saveConfigStruct(config); err != nil {
					return err
				}

				if err := exchangeCode(ctx, config, code); err != nil {
					return err
				}

				config = loadConfig()
			} else {
				token, err := readSecret(out, reader, "Access token: ")
				if err != nil {
					return err
				}

				config.AccessToken = token
			}

			if config.AccessToken == "" {
				return constants.ErrNoCredentials
			}

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			account, err := client.Account().Current(ctx, amocrm.Current, false, nil)
			if err != nil {
				return fmt.Errorf("failed to connect to API: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Logged in to %s (%s)\n", formatValue(account["name"]), baseURL)

			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "integration ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "integration secret key")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "integration redirect URI")
	cmd.Flags().StringVar(&code, "code", "", "authorization code")

	return cmd
}

func exchangeCode(ctx context.Context, config *Config, code string) error {
	manager := auth.NewConfigTokenManager(&auth.OAuth2Config{
		TokenURL:     auth.TokenURLFor(config.BaseURL),
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURI:  config.RedirectURI,
	}, NewConfigPersister(), time.Time{})

	if _, err := manager.Exchange(ctx, code); err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return nil
}

// readSecret prompts for a value without echo when stdin is a terminal.
func readSecret(out io.Writer, reader *bufio.Reader, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(out)

		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		return strings.TrimSpace(string(secret)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}
