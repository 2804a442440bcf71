package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fivetwenty-io/amocrm-client/internal/constants"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// resetViper isolates tests that touch the global viper instance.
func resetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	viper.SetConfigFile(filepath.Join(t.TempDir(), "config.yml"))
	t.Cleanup(viper.Reset)
}

func TestParseFieldFlags(t *testing.T) {
	t.Parallel()

	values, err := parseFieldFlags([]string{
		"name=Acme",
		"price=1500",
		"tags=[\"vip\",\"new\"]",
		"is_deleted=false",
		"note=a=b",
	})
	require.NoError(t, err)

	assert.Equal(t, amocrm.Record{
		"name":       "Acme",
		"price":      float64(1500),
		"tags":       []any{"vip", "new"},
		"is_deleted": false,
		"note":       "a=b",
	}, values)

	for _, bad := range []string{"name", "=value", " =x"} {
		_, err := parseFieldFlags([]string{bad})
		require.ErrorIs(t, err, constants.ErrInvalidFieldFlag, bad)
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := parseID(bad)
		require.ErrorIs(t, err, constants.ErrInvalidID, bad)
	}
}

func TestParseModifiedFlag(t *testing.T) {
	t.Parallel()

	moment, err := parseModifiedFlag("")
	require.NoError(t, err)
	assert.Nil(t, moment)

	moment, err = parseModifiedFlag("1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), moment.Epoch(nil))

	_, err = parseModifiedFlag("yesterday-ish")
	require.ErrorIs(t, err, amocrm.ErrInvalidValue)
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input any
		want  string
	}{
		{nil, ""},
		{"text", "text"},
		{float64(1700000000), "1700000000"},
		{1.5, "1.5"},
		{true, "true"},
		{7, "7"},
		{[]any{"a"}, `["a"]`},
		{map[string]any{"k": float64(1)}, `{"k":1}`},
	}

	for _, tt := range tests {

		tt := tt
		assert.Equal(t, tt.want, formatValue(tt.input))
	}
}

func TestOutputRecords_Formats(t *testing.T) {
	resetViper(t)

	records := []amocrm.Record{{"id": float64(1), "name": "Acme"}}

	viper.Set("output", constants.FormatJSON)

	var jsonOut bytes.Buffer
	require.NoError(t, outputRecords(&jsonOut, records, companyColumns))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &decoded))
	assert.Equal(t, "Acme", decoded[0]["name"])

	viper.Set("output", constants.FormatYAML)

	var yamlOut bytes.Buffer
	require.NoError(t, outputRecords(&yamlOut, records, companyColumns))
	assert.Contains(t, yamlOut.String(), "name: Acme")

	viper.Set("output", constants.FormatTable)

	var tableOut bytes.Buffer
	require.NoError(t, outputRecords(&tableOut, records, companyColumns))
	assert.Contains(t, tableOut.String(), "Acme")
	assert.Contains(t, tableOut.String(), "RESPONSIBLE")

	var emptyOut bytes.Buffer
	require.NoError(t, outputRecords(&emptyOut, nil, companyColumns))
	assert.Equal(t, "No records found\n", emptyOut.String())

	viper.Set("output", "xml")
	require.ErrorIs(t, outputRecords(&bytes.Buffer{}, records, companyColumns), constants.ErrInvalidOutputFormat)
}

func TestOutputResult(t *testing.T) {
	resetViper(t)

	var out bytes.Buffer
	require.NoError(t, outputResult(&out, &amocrm.Result{OK: true}))
	assert.Equal(t, "OK: true\n", out.String())

	viper.Set("output", constants.FormatJSON)
	out.Reset()
	require.NoError(t, outputResult(&out, &amocrm.Result{IDs: []int{5}, OK: true}))
	assert.JSONEq(t, `{"ok":true,"ids":[5],"records":null}`, out.String())
}

func TestCreateClient_RequiresConfiguration(t *testing.T) {
	resetViper(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	_, err := createClient(ctx)
	require.ErrorIs(t, err, constants.ErrNoBaseURL)

	viper.Set("base_url", "shop")

	_, err = createClient(ctx)
	require.ErrorIs(t, err, constants.ErrNotAuthenticated)
}

func TestCurrentGeneration(t *testing.T) {
	resetViper(t)

	gen, err := currentGeneration()
	require.NoError(t, err)
	assert.Equal(t, amocrm.Current, gen)

	viper.Set("generation", "v2")

	gen, err = currentGeneration()
	require.NoError(t, err)
	assert.Equal(t, amocrm.Legacy, gen)

	viper.Set("generation", "v3")

	_, err = currentGeneration()
	require.ErrorIs(t, err, amocrm.ErrUnsupportedGeneration)
}

func TestCompaniesList_AgainstServer(t *testing.T) {
	resetViper(t)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v4/companies", request.URL.Path)
		assert.Equal(t, "Bearer secret", request.Header.Get("Authorization"))
		assert.Equal(t, "10", request.URL.Query().Get("limit"))

		_ = json.NewEncoder(writer).Encode(map[string]any{
			"_embedded": map[string]any{
				"companies": []any{map[string]any{"id": 1, "name": "Acme"}},
			},
		})
	}))
	defer server.Close()

	viper.Set("base_url", server.URL)
	viper.Set("token", "secret")
	viper.Set("output", constants.FormatJSON)

	cmd := NewCompaniesCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list", "--limit", "10"})

	require.NoError(t, cmd.Execute())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Acme", decoded[0]["name"])
}

func TestLeadsAdd_Legacy(t *testing.T) {
	resetViper(t)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/private/api/v2/json/leads/set", request.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Contains(t, body, "request")

		_ = json.NewEncoder(writer).Encode(map[string]any{
			"response": map[string]any{
				"leads": map[string]any{"add": []any{map[string]any{"id": 77, "request_id": 0}}},
			},
		})
	}))
	defer server.Close()

	viper.Set("base_url", server.URL)
	viper.Set("token", "secret")
	viper.Set("generation", "v2")

	cmd := NewLeadsCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"add", "--field", "name=Deal", "--field", "price=1500"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "77")
}

func TestConfigPersister_UpdateToken(t *testing.T) {
	resetViper(t)

	viper.Set("base_url", "https://shop.amocrm.ru")
	viper.Set("client_id", "integration")

	expiresAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, NewConfigPersister().UpdateToken("access", expiresAt, "refresh"))

	data, err := os.ReadFile(viper.ConfigFileUsed())
	require.NoError(t, err)

	var saved Config
	require.NoError(t, yaml.Unmarshal(data, &saved))

	assert.Equal(t, "https://shop.amocrm.ru", saved.BaseURL)
	assert.Equal(t, "integration", saved.ClientID)
	assert.Equal(t, "access", saved.AccessToken)
	assert.Equal(t, "refresh", saved.RefreshToken)
	require.NotNil(t, saved.TokenExpiresAt)
	assert.True(t, expiresAt.Equal(*saved.TokenExpiresAt))
	assert.NotNil(t, saved.LastRefreshed)

	assert.Equal(t, "access", loadConfig().AccessToken)
}

func TestSetConfigValue(t *testing.T) {
	t.Parallel()

	config := &Config{}

	require.NoError(t, setConfigValue(config, "generation", "v2"))
	assert.Equal(t, "v2", config.Generation)

	require.ErrorIs(t, setConfigValue(config, "access_token", "x"), constants.ErrConfigKeyReadOnly)
	require.ErrorIs(t, setConfigValue(config, "colour", "x"), constants.ErrUnknownConfigKey)
}
