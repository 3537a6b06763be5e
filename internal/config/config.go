// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

// MinSecretLength is the minimum accepted length of the token signing secret.
const MinSecretLength = 32

// DefaultPasswordMinLength accepts any non-empty password unless configured otherwise.
const DefaultPasswordMinLength = 1

// Reject policies for internship postings.
const (
	RejectSoft = "soft"
	RejectHard = "hard"
)

var (
	ErrMissingSecret     = errors.New("jwt secret is required (set JWT_SECRET or auth.jwt_secret)")
	ErrWeakSecret        = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	ErrInvalidTTL        = errors.New("token ttl must be positive")
	ErrInvalidPolicy     = errors.New("internship reject policy must be soft or hard")
	ErrInvalidUploadSize = errors.New("max resume size must be positive")
)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server      ServerConfig
	Log         LogConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Internships InternshipConfig
	Uploads     UploadConfig
	SMTP        SMTPConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
	CORSOrigins []string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical for config structs
	JWTSecret         string
	JWTIssuer         string
	TokenTTL          time.Duration
	BcryptCost        int
	PasswordMinLength int
	PasswordStrict    bool // reject numeric, common and personal passwords
	LoginRatePerMin   int

	// Approval policy per role.
	UserApproval    bool
	PartnerApproval bool
	AdminApproval   bool

	// Bootstrap admin, created approved at startup when both are set.
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type InternshipConfig struct {
	RejectPolicy string // soft, hard
}

type UploadConfig struct {
	Dir           string
	MaxResumeSize int // in MB
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

// Enabled reports whether outbound mail is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
			CORSOrigins: cmd.StringSlice("cors-origins"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Auth: AuthConfig{
			JWTSecret:         cmd.String("jwt-secret"),
			JWTIssuer:         cmd.String("jwt-issuer"),
			TokenTTL:          cmd.Duration("token-ttl"),
			BcryptCost:        int(cmd.Int("bcrypt-cost")),
			PasswordMinLength: int(cmd.Int("password-min-length")),
			PasswordStrict:    cmd.Bool("password-strict"),
			LoginRatePerMin:   int(cmd.Int("login-rate-limit")),
			UserApproval:      cmd.Bool("approval-user"),
			PartnerApproval:   cmd.Bool("approval-partner"),
			AdminApproval:     cmd.Bool("approval-admin"),
			AdminEmail:        cmd.String("admin-email"),
			AdminPassword:     cmd.String("admin-password"),
			AdminName:         cmd.String("admin-name"),
		},
		Internships: InternshipConfig{
			RejectPolicy: strings.ToLower(cmd.String("internship-reject-policy")),
		},
		Uploads: UploadConfig{
			Dir:           cmd.String("upload-dir"),
			MaxResumeSize: int(cmd.Int("max-resume-size")),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	return cfg
}

// Validate checks settings that must not fall back to defaults.
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" {
		return ErrMissingSecret
	}
	if len(secret) < MinSecretLength {
		return ErrWeakSecret
	}
	if c.Auth.TokenTTL <= 0 {
		return ErrInvalidTTL
	}
	switch c.Internships.RejectPolicy {
	case RejectSoft, RejectHard:
	default:
		return ErrInvalidPolicy
	}
	if c.Uploads.MaxResumeSize <= 0 {
		return ErrInvalidUploadSize
	}
	return nil
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	if port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   5000,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   10,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringSliceFlag{
			Name:    "cors-origins",
			Value:   []string{"http://localhost:3000"},
			Usage:   "Origins allowed to call the API from a browser",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CORS_ORIGINS"), toml.TOML("server.cors_origins", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/skillnaav.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		// Auth flags
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "Secret used to sign access tokens (required, at least 32 bytes)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_SECRET"), toml.TOML("auth.jwt_secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "jwt-issuer",
			Value:   "skillnaav",
			Usage:   "Issuer claim for access tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_ISSUER"), toml.TOML("auth.jwt_issuer", configFile)),
		},
		&cli.DurationFlag{
			Name:    "token-ttl",
			Value:   time.Hour,
			Usage:   "Lifetime of access tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TOKEN_TTL"), toml.TOML("auth.token_ttl", configFile)),
		},
		&cli.IntFlag{
			Name:    "bcrypt-cost",
			Value:   10,
			Usage:   "bcrypt cost factor for password hashes",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BCRYPT_COST"), toml.TOML("auth.bcrypt_cost", configFile)),
		},
		&cli.IntFlag{
			Name:    "password-min-length",
			Value:   DefaultPasswordMinLength,
			Usage:   "Minimum password length",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PASSWORD_MIN_LENGTH"), toml.TOML("auth.password_min_length", configFile)),
		},
		&cli.BoolFlag{
			Name:    "password-strict",
			Usage:   "Reject numeric-only, common and personal-information passwords",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PASSWORD_STRICT"), toml.TOML("auth.password_strict", configFile)),
		},
		&cli.IntFlag{
			Name:    "login-rate-limit",
			Value:   10,
			Usage:   "Login and registration requests per minute per client IP (0 disables)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOGIN_RATE_LIMIT"), toml.TOML("auth.login_rate_limit", configFile)),
		},
		&cli.BoolFlag{
			Name:    "approval-user",
			Value:   false,
			Usage:   "Require admin approval before students can log in",
			Sources: cli.NewValueSourceChain(cli.EnvVar("APPROVAL_USER"), toml.TOML("auth.approval.user", configFile)),
		},
		&cli.BoolFlag{
			Name:    "approval-partner",
			Value:   true,
			Usage:   "Require admin approval before partners can log in",
			Sources: cli.NewValueSourceChain(cli.EnvVar("APPROVAL_PARTNER"), toml.TOML("auth.approval.partner", configFile)),
		},
		&cli.BoolFlag{
			Name:    "approval-admin",
			Value:   true,
			Usage:   "Require approval by another admin before admins can log in",
			Sources: cli.NewValueSourceChain(cli.EnvVar("APPROVAL_ADMIN"), toml.TOML("auth.approval.admin", configFile)),
		},
		&cli.StringFlag{
			Name:    "admin-email",
			Usage:   "Email of the bootstrap admin account",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ADMIN_EMAIL"), toml.TOML("auth.admin_email", configFile)),
		},
		&cli.StringFlag{
			Name:    "admin-password",
			Usage:   "Password of the bootstrap admin account",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ADMIN_PASSWORD"), toml.TOML("auth.admin_password", configFile)),
		},
		&cli.StringFlag{
			Name:    "admin-name",
			Value:   "Administrator",
			Usage:   "Display name of the bootstrap admin account",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ADMIN_NAME"), toml.TOML("auth.admin_name", configFile)),
		},
		// Internship flags
		&cli.StringFlag{
			Name:    "internship-reject-policy",
			Value:   RejectSoft,
			Usage:   "What rejecting a posting does (soft: hide and keep, hard: delete)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("INTERNSHIP_REJECT_POLICY"), toml.TOML("internships.reject_policy", configFile)),
		},
		// Upload flags
		&cli.StringFlag{
			Name:    "upload-dir",
			Value:   "./data/resumes",
			Usage:   "Directory for uploaded resumes",
			Sources: cli.NewValueSourceChain(cli.EnvVar("UPLOAD_DIR"), toml.TOML("uploads.dir", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-resume-size",
			Value:   5,
			Usage:   "Maximum resume size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_RESUME_SIZE"), toml.TOML("uploads.max_resume_size", configFile)),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host (notifications are only logged if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Value:   "noreply@skillnaav.com",
			Usage:   "Sender address for notifications",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "SkillNaav",
			Usage:   "Sender display name for notifications",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
	}
}
