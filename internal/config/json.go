package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/psergee/authd/internal/flagx"
	"github.com/psergee/authd/internal/timex"
)

// jsonConfig mirrors Config for JSON unmarshalling, with timex.Duration so
// lifetimes can be written either as strings ("30m") or nanosecond integers.
type jsonConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	PublicBaseURL    string `json:"public_base_url"`
	DatabaseDSN      string `json:"database_dsn"`
	RedisAddr        string `json:"redis_addr"`
	RedisPassword    string `json:"redis_password"`

	GoogleClientID string `json:"google_client_id"`

	SecretKey                      string         `json:"secret_key"`
	AccessTokenValidityDuration    timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration   timex.Duration `json:"refresh_token_validity_duration"`
	RegisterTokenValidityDuration  timex.Duration `json:"register_token_validity_duration"`
	ForgotPwdTokenValidityDuration timex.Duration `json:"forgotpwd_token_validity_duration"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	UploadFolder   string `json:"upload_folder"`

	MailFrom         string `json:"mail_from"`
	MailResendAPIKey string `json:"mail_resend_api_key"`
	MailSMTPHost     string `json:"mail_smtp_host"`
	MailSMTPPort     int    `json:"mail_smtp_port"`
	MailSMTPPassword string `json:"mail_smtp_password"`
	RegisterSubject  string `json:"register_subject"`
	ForgotPwdSubject string `json:"forgotpwd_subject"`
}

// parseJSON overlays values from the JSON file named by -c/-config, if any.
// Unreadable or invalid files panic: a broken explicit config is fatal.
func parseJSON(config *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{
		EndpointAddrHTTP: config.EndpointAddrHTTP,
		PublicBaseURL:    config.PublicBaseURL,
		DatabaseDSN:      config.DatabaseDSN,
		RedisAddr:        config.RedisAddr,
		RedisPassword:    config.RedisPassword,
		GoogleClientID:   config.GoogleClientID,
		SecretKey:        config.SecretKey,
		AccessTokenValidityDuration:    timex.Duration{Duration: config.AccessTokenValidityDuration},
		RefreshTokenValidityDuration:   timex.Duration{Duration: config.RefreshTokenValidityDuration},
		RegisterTokenValidityDuration:  timex.Duration{Duration: config.RegisterTokenValidityDuration},
		ForgotPwdTokenValidityDuration: timex.Duration{Duration: config.ForgotPwdTokenValidityDuration},
		S3RootUser:       config.S3RootUser,
		S3RootPassword:   config.S3RootPassword,
		S3Bucket:         config.S3Bucket,
		S3Region:         config.S3Region,
		S3BaseEndpoint:   config.S3BaseEndpoint,
		UploadFolder:     config.UploadFolder,
		MailFrom:         config.MailFrom,
		MailResendAPIKey: config.MailResendAPIKey,
		MailSMTPHost:     config.MailSMTPHost,
		MailSMTPPort:     config.MailSMTPPort,
		MailSMTPPassword: config.MailSMTPPassword,
		RegisterSubject:  config.RegisterSubject,
		ForgotPwdSubject: config.ForgotPwdSubject,
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.PublicBaseURL = c.PublicBaseURL
	config.DatabaseDSN = c.DatabaseDSN
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.GoogleClientID = c.GoogleClientID
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.RegisterTokenValidityDuration = time.Duration(c.RegisterTokenValidityDuration.Duration)
	config.ForgotPwdTokenValidityDuration = time.Duration(c.ForgotPwdTokenValidityDuration.Duration)
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.UploadFolder = c.UploadFolder
	config.MailFrom = c.MailFrom
	config.MailResendAPIKey = c.MailResendAPIKey
	config.MailSMTPHost = c.MailSMTPHost
	config.MailSMTPPort = c.MailSMTPPort
	config.MailSMTPPassword = c.MailSMTPPassword
	config.RegisterSubject = c.RegisterSubject
	config.ForgotPwdSubject = c.ForgotPwdSubject
}
