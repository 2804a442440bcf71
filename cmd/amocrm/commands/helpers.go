package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/amocrm-client/internal/constants"
	"github.com/fivetwenty-io/amocrm-client/pkg/amoclient"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// createClient builds an API client from flags, environment and the config
// file, in that order of precedence.
func createClient(ctx context.Context) (amocrm.Client, error) {
	config := loadConfig()

	if config.BaseURL == "" {
		return nil, constants.ErrNoBaseURL
	}

	clientConfig := &amocrm.Config{
		BaseURL:      config.BaseURL,
		RetryMax:     constants.DefaultRetryMax,
		RateLimit:    amocrm.DefaultRateLimit,
		HTTPTimeout:  constants.DefaultHTTPTimeout,
		UserAgent:    "amocrm-cli",
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURI:  config.RedirectURI,
	}

	if token := viper.GetString("token"); token != "" {
		clientConfig.AccessToken = token
		clientConfig.ClientID = ""
		clientConfig.ClientSecret = ""
	} else {
		if config.AccessToken == "" && config.RefreshToken == "" {
			return nil, constants.ErrNotAuthenticated
		}

		if config.RefreshToken == "" && config.TokenExpiresAt != nil && time.Now().After(*config.TokenExpiresAt) {
			return nil, constants.ErrNoRefreshToken
		}

		clientConfig.AccessToken = config.AccessToken
		clientConfig.RefreshToken = config.RefreshToken
		clientConfig.TokenPersister = NewConfigPersister()

		if config.TokenExpiresAt != nil {
			clientConfig.TokenExpiresAt = *config.TokenExpiresAt
		}
	}

	if viper.GetBool("verbose") {
		zapLogger, err := amoclient.NewConsoleLogger(true)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}

		clientConfig.Logger = amoclient.NewZapLogger(zapLogger)
		clientConfig.Debug = true
	}

	client, err := amoclient.New(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// currentGeneration resolves --generation, then the config file. The
// current API is the default.
func currentGeneration() (amocrm.Generation, error) {
	gen, err := amocrm.ParseGeneration(viper.GetString("generation"))
	if err != nil {
		return 0, fmt.Errorf("invalid --generation: %w", err)
	}

	return gen, nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q: %w", arg, constants.ErrInvalidID)
	}

	return id, nil
}

// parseFieldFlags turns repeated key=value flags into entity values.
// Values that parse as JSON keep their JSON type, so numbers, booleans,
// arrays and objects can be given; anything else is a string.
func parseFieldFlags(flags []string) (amocrm.Record, error) {
	values := amocrm.Record{}

	for _, flag := range flags {
		key, raw, ok := strings.Cut(flag, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, fmt.Errorf("%q: %w", flag, constants.ErrInvalidFieldFlag)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}

		values[key] = value
	}

	return values, nil
}

// listParamsFromFlags reads the common list flags of a command.
func listParamsFromFlags(cmd *cobra.Command) (*amocrm.ListParams, error) {
	params := &amocrm.ListParams{}

	params.Limit, _ = cmd.Flags().GetInt("limit")
	params.Page, _ = cmd.Flags().GetInt("page")
	params.Query, _ = cmd.Flags().GetString("query")
	params.With, _ = cmd.Flags().GetStringSlice("with")

	if since, _ := cmd.Flags().GetString("modified-since"); since != "" {
		moment, err := amocrm.ParseMoment(since)
		if err != nil {
			return nil, fmt.Errorf("invalid --modified-since: %w", err)
		}

		params.ModifiedSince = moment
	}

	return params, nil
}

// parseModifiedFlag reads an optional modification moment. An empty flag
// yields nil.
func parseModifiedFlag(raw string) (*amocrm.Moment, error) {
	if raw == "" {
		return nil, nil
	}

	moment, err := amocrm.ParseMoment(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --modified: %w", err)
	}

	return moment, nil
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", constants.DefaultPageSize, "maximum number of records")
	cmd.Flags().Int("page", 0, "page number (v4)")
	cmd.Flags().String("query", "", "search query")
	cmd.Flags().StringSlice("with", nil, "related data to include (v4)")
	cmd.Flags().String("modified-since", "", "only records modified since (epoch, RFC 3339 or now)")
}

// outputRecords writes records in the selected output format. Table output
// shows the given columns only.
func outputRecords(out io.Writer, records []amocrm.Record, columns []string) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		return outputJSON(out, records)
	case constants.FormatYAML:
		return outputYAML(out, records)
	case constants.FormatTable, "":
		if len(records) == 0 {
			_, _ = fmt.Fprintln(out, "No records found")

			return nil
		}

		table := tablewriter.NewWriter(out)

		header := make([]any, len(columns))
		for i, column := range columns {
			header[i] = strings.ToUpper(column)
		}

		table.Header(header...)

		for _, record := range records {
			row := make([]string, len(columns))
			for i, column := range columns {
				row[i] = formatValue(record[column])
			}

			_ = table.Append(row)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%q: %w", viper.GetString("output"), constants.ErrInvalidOutputFormat)
	}
}

// outputRecord writes a single record. Table output lists every key.
func outputRecord(out io.Writer, record amocrm.Record) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		return outputJSON(out, record)
	case constants.FormatYAML:
		return outputYAML(out, record)
	case constants.FormatTable, "":
		keys := make([]string, 0, len(record))
		for key := range record {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		table := tablewriter.NewWriter(out)
		table.Header("Property", "Value")

		for _, key := range keys {
			_ = table.Append(key, formatValue(record[key]))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%q: %w", viper.GetString("output"), constants.ErrInvalidOutputFormat)
	}
}

// outputResult writes the outcome of a write operation.
func outputResult(out io.Writer, result *amocrm.Result) error {
	summary := map[string]any{"ok": result.OK, "ids": result.IDs, "records": result.Records}

	switch viper.GetString("output") {
	case constants.FormatJSON:
		return outputJSON(out, summary)
	case constants.FormatYAML:
		return outputYAML(out, summary)
	case constants.FormatTable, "":
		if len(result.IDs) == 0 {
			_, _ = fmt.Fprintf(out, "OK: %t\n", result.OK)

			return nil
		}

		table := tablewriter.NewWriter(out)
		table.Header("ID")

		for _, id := range result.IDs {
			_ = table.Append(strconv.Itoa(id))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%q: %w", viper.GetString("output"), constants.ErrInvalidOutputFormat)
	}
}

func outputJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func outputYAML(out io.Writer, value any) error {
	encoder := yaml.NewEncoder(out)
	defer func() { _ = encoder.Close() }()

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

func formatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		if typed == math.Trunc(typed) && math.Abs(typed) < 1<<53 {
			return strconv.FormatInt(int64(typed), 10)
		}

		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool, int, int64:
		return fmt.Sprint(typed)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}

		return string(encoded)
	}
}
