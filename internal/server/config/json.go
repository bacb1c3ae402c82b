package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept Go
// duration strings ("15m") or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc"`
	OpsAddrHTTP          string         `json:"ops_addr_http"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	LogLevel             string         `json:"log_level"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	PasskeyChallengeTTL  timex.Duration `json:"passkey_challenge_ttl"`
	EmailVerificationTTL timex.Duration `json:"email_verification_ttl"`
	SweepInterval        timex.Duration `json:"sweep_interval"`
	RPID                 string         `json:"rp_id"`
	RPDisplayName        string         `json:"rp_display_name"`
	RPOrigins            []string       `json:"rp_origins"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
	OTELEndpoint         string         `json:"otel_endpoint"`
}

// parseJson loads the file given by -c/-config, if any, and copies every
// field present in it onto config. A missing or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.OpsAddrHTTP, c.OpsAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.RPID, c.RPID)
	setString(&config.RPDisplayName, c.RPDisplayName)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.OTELEndpoint, c.OTELEndpoint)

	if len(c.RPOrigins) > 0 {
		config.RPOrigins = c.RPOrigins
	}
	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.PasskeyChallengeTTL.Duration > 0 {
		config.PasskeyChallengeTTL = c.PasskeyChallengeTTL.Duration
	}
	if c.EmailVerificationTTL.Duration > 0 {
		config.EmailVerificationTTL = c.EmailVerificationTTL.Duration
	}
	if c.SweepInterval.Duration > 0 {
		config.SweepInterval = c.SweepInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
