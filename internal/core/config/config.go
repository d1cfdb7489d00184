package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
// - aliases: comma separated fallback keys read in order when the primary key is empty
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080" required:"true"`

	// Postgres holds the order store connection parameters.
	Postgres PostgresConfig `mapstructure:",squash"`

	// Shopify holds the commerce platform credentials used for carrier tracking.
	Shopify ShopifyConfig `mapstructure:",squash"`

	// Lookup holds the order lookup policy.
	Lookup LookupConfig `mapstructure:",squash"`

	// Airtable holds the catalog spreadsheet credentials.
	Airtable AirtableConfig `mapstructure:",squash"`

	// Identity holds the identity provider location used by the admin surface.
	Identity IdentityConfig `mapstructure:",squash"`

	// Redis holds the cache configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// Proxy holds the optional outbound proxy.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// PostgresConfig holds the order store connection details.
// Required keys are checked per lookup, not at load time.
type PostgresConfig struct {
	Host     string `mapstructure:"PGHOST"`
	Port     int    `mapstructure:"PGPORT" default:"5432"`
	Database string `mapstructure:"PGDATABASE"`
	User     string `mapstructure:"PGUSER"`
	Password string `mapstructure:"PGPASSWORD"`
	// SSLMode is passed through to the driver. "disable" turns TLS off.
	SSLMode string `mapstructure:"PGSSLMODE" default:"require"`
	// MaxConns bounds the number of concurrently in-flight store queries.
	MaxConns       int32         `mapstructure:"PG_MAX_CONNS" default:"3"`
	ConnectTimeout time.Duration `mapstructure:"PG_CONNECT_TIMEOUT" default:"10s"`
	IdleTimeout    time.Duration `mapstructure:"PG_IDLE_TIMEOUT" default:"10s"`
}

// Missing returns the environment keys required to reach the store that are unset.
func (c PostgresConfig) Missing() []string {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "PGHOST")
	}
	if c.Database == "" {
		missing = append(missing, "PGDATABASE")
	}
	if c.User == "" {
		missing = append(missing, "PGUSER")
	}
	if c.Password == "" {
		missing = append(missing, "PGPASSWORD")
	}
	return missing
}

// ShopifyConfig holds the credentials for the Shopify Admin API.
type ShopifyConfig struct {
	// ShopDomain is the myshopify domain (e.g., store.myshopify.com). A full URL is accepted too.
	ShopDomain string `mapstructure:"SHOPIFY_SHOP_DOMAIN" aliases:"SHOPIFY_STORE_DOMAIN,SHOPIFY_DOMAIN"`
	// AccessToken is the Admin API access token.
	AccessToken string `mapstructure:"SHOPIFY_ADMIN_ACCESS_TOKEN" aliases:"SHOPIFY_ACCESS_TOKEN,SHOPIFY_API_TOKEN"`
	// APIVersion is the Admin API version segment.
	APIVersion string `mapstructure:"SHOPIFY_API_VERSION" default:"2024-10"`
	// Timeout bounds each request to the Admin API.
	Timeout time.Duration `mapstructure:"SHOPIFY_TIMEOUT" default:"8s"`
	// RatePerSecond paces outbound calls. Zero disables pacing.
	RatePerSecond float64 `mapstructure:"SHOPIFY_RATE_PER_SECOND" default:"2"`
	// RateBurst is the limiter bucket size.
	RateBurst int `mapstructure:"SHOPIFY_RATE_BURST" default:"4"`
}

// HasCredentials reports whether both the shop domain and the token are present.
func (c ShopifyConfig) HasCredentials() bool {
	return strings.TrimSpace(c.ShopDomain) != "" && strings.TrimSpace(c.AccessToken) != ""
}

// BaseURL returns the shop origin, defaulting the scheme to https.
func (c ShopifyConfig) BaseURL() string {
	domain := strings.TrimRight(strings.TrimSpace(c.ShopDomain), "/")
	if domain == "" {
		return ""
	}
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

// LookupConfig holds the policy knobs of the order lookup.
type LookupConfig struct {
	// PartialTriggersCarrier makes "partially fulfilled" orders eligible for carrier tracking.
	PartialTriggersCarrier bool `mapstructure:"LOOKUP_PARTIAL_TRIGGERS_CARRIER" default:"true"`
	// CarrierTag marks orders shipped through the external carrier.
	CarrierTag string `mapstructure:"LOOKUP_CARRIER_TAG" default:"foraneo"`
	// LocalTag marks orders delivered in-house.
	LocalTag string `mapstructure:"LOOKUP_LOCAL_TAG" default:"local"`
}

// AirtableConfig holds the catalog base credentials.
type AirtableConfig struct {
	APIURL     string `mapstructure:"AIRTABLE_API_URL" default:"https://api.airtable.com/v0"`
	BaseID     string `mapstructure:"AIRTABLE_BASE"`
	Table      string `mapstructure:"AIRTABLE_TABLE"`
	AdminTable string `mapstructure:"AIRTABLE_ADMIN_TABLE"`
	Token      string `mapstructure:"AIRTABLE_TOKEN"`
	// Timeout bounds each request to Airtable.
	Timeout time.Duration `mapstructure:"AIRTABLE_TIMEOUT" default:"10s"`
}

// IdentityConfig locates the identity endpoint used to resolve admin users.
type IdentityConfig struct {
	// SiteURL is the deployed site origin hosting the identity endpoint.
	SiteURL string `mapstructure:"URL" aliases:"DEPLOY_PRIME_URL"`
}

// RedisConfig holds the cache connection.
type RedisConfig struct {
	// URL in the form redis://[:password@]host[:port][/database]. Empty disables caching.
	URL string `mapstructure:"REDIS_URL"`
	// AllowListTTL is how long an admin allow-list answer is cached.
	AllowListTTL time.Duration `mapstructure:"ADMIN_ALLOWLIST_TTL" default:"5m"`
}

// ProxyConfig describes an optional outbound HTTP proxy.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED" default:"false"`
	Hostname string `mapstructure:"PROXY_HOSTNAME"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	applyAliases(v, &config)

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags binds every tagged key (and its aliases) and registers default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
		for _, alias := range splitAliases(field.Tag.Get("aliases")) {
			if err := v.BindEnv(alias); err != nil {
				return fmt.Errorf("failed to bind %s: %w", alias, err)
			}
		}

		if defaultValue := field.Tag.Get("default"); defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// applyAliases fills empty string fields from the first non-empty alias key.
func applyAliases(v *viper.Viper, config interface{}) {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			applyAliases(v, val.Field(i).Addr().Interface())
			continue
		}

		aliases := splitAliases(field.Tag.Get("aliases"))
		if len(aliases) == 0 || field.Type.Kind() != reflect.String {
			continue
		}

		current := val.Field(i)
		if strings.TrimSpace(current.String()) != "" {
			continue
		}
		for _, alias := range aliases {
			if s := strings.TrimSpace(v.GetString(alias)); s != "" {
				current.SetString(s)
				break
			}
		}
	}
}

func splitAliases(tag string) []string {
	if tag == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(tag, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
