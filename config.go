package cybersource

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment represents the CyberSource environment (sandbox or production).
type Environment string

const (
	EnvSandbox    Environment = "sandbox"
	EnvProduction Environment = "production"
)

// APIVersion is the Simple Order API version the client targets.
const APIVersion = "1.120"

// Config holds the credentials and settings needed to interact with
// the CyberSource Simple Order SOAP API.
type Config struct {
	// MerchantID is the CyberSource merchant identifier. It doubles as
	// the WS-Security username.
	MerchantID string

	// APIKey is the SOAP toolkit transaction security key, sent as the
	// WS-Security UsernameToken password.
	APIKey string

	// Env selects sandbox or production endpoints.
	Env Environment

	// BaseURL optionally overrides the SOAP endpoint URL.
	// When empty, the URL is derived from Env.
	BaseURL string

	// P12Path optionally points to a P12/PFX certificate. When set,
	// requests additionally carry an X.509 BinarySecurityToken and an
	// XML signature over the Body.
	P12Path string

	// P12Password is the password that protects the P12 file.
	P12Password string
}

// Validate checks that the required configuration fields are present.
func (c Config) Validate() error {
	if c.MerchantID == "" {
		return fmt.Errorf("cybersource: MerchantID is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("cybersource: APIKey is required")
	}
	return nil
}

// DefaultBaseURL returns the SOAP transaction endpoint for the
// configured environment.
func (c Config) DefaultBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Env == EnvProduction {
		return "https://ics2wsa.ic3.com/commerce/1.x/transactionProcessor"
	}
	return "https://ics2wstesta.ic3.com/commerce/1.x/transactionProcessor"
}

// LoadConfigFromEnv creates a Config from environment variables:
//
//	CYBS_MERCHANT_ID   – merchant identifier (required)
//	CYBS_API_KEY       – transaction security key (required)
//	CYBS_ENV           – "sandbox" (default) or "production"
//	CYBS_BASE_URL      – optional SOAP endpoint override
//	CYBS_P12_PATH      – optional path to a P12 signing certificate
//	CYBS_P12_PASSWORD  – P12 file password
func LoadConfigFromEnv() Config {
	return configFromEnv()
}

// LoadConfigFromDotEnv loads environment variables from a .env file and
// then reads the Config from them. If the file does not exist it
// silently falls back to the current process environment.
func LoadConfigFromDotEnv(filenames ...string) Config {
	// godotenv.Load does NOT override existing env vars.
	_ = godotenv.Load(filenames...)
	return configFromEnv()
}

func configFromEnv() Config {
	env := EnvSandbox
	if os.Getenv("CYBS_ENV") == "production" {
		env = EnvProduction
	}

	return Config{
		MerchantID:  os.Getenv("CYBS_MERCHANT_ID"),
		APIKey:      os.Getenv("CYBS_API_KEY"),
		Env:         env,
		BaseURL:     os.Getenv("CYBS_BASE_URL"),
		P12Path:     os.Getenv("CYBS_P12_PATH"),
		P12Password: os.Getenv("CYBS_P12_PASSWORD"),
	}
}
