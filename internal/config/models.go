package config

import "time"

// ServerConfig configures the filter front ends
type ServerConfig struct {
	FilterType      string
	ListenAddress   string
	MaxBodySize     string
	ShutdownTimeout time.Duration
	BlockPhishing   bool
	BlockLevel      string
	ModifySubject   bool
	SubjectPrefix   string
	Headers         HeaderConfig
}

// HeaderConfig names the headers added to filtered mail
type HeaderConfig struct {
	Score            string
	Level            string
	Reasons          string
	MaxReasonsLength int
}

// SMTPConfig configures the Postfix content filter listener
type SMTPConfig struct {
	ListenAddress string
}

// PostfixConfig is where filtered mail is re-injected
type PostfixConfig struct {
	Enabled bool
	Address string
	Port    int
}

// DetectorConfig tunes the sender lookalike check
type DetectorConfig struct {
	BrandDomains      []string
	LookalikeDistance int
}

// AuditConfig selects the audit log backend
type AuditConfig struct {
	Enabled        bool
	Type           string
	CSVPath        string
	SQLitePath     string
	MySQLDSN       string
	MemoryCapacity int
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level  string
	Format string
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:      c.GetString("server.filter_type"),
		ListenAddress:   c.GetString("server.listen_address"),
		MaxBodySize:     c.GetString("server.max_body_size"),
		ShutdownTimeout: c.v.GetDuration("server.shutdown_timeout"),
		BlockPhishing:   c.GetBool("server.block_phishing"),
		BlockLevel:      c.GetString("server.block_level"),
		ModifySubject:   c.GetBool("server.modify_subject"),
		SubjectPrefix:   c.GetString("server.subject_prefix"),
		Headers: HeaderConfig{
			Score:            c.GetString("server.headers.score"),
			Level:            c.GetString("server.headers.level"),
			Reasons:          c.GetString("server.headers.reasons"),
			MaxReasonsLength: c.GetInt("server.headers.max_reasons_length"),
		},
	}
}

// GetSMTP returns the SMTP listener configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		ListenAddress: c.GetString("server.smtp.listen_address"),
	}
}

// GetPostfix returns the Postfix re-injection configuration
func (c *Config) GetPostfix() PostfixConfig {
	return PostfixConfig{
		Enabled: c.GetBool("server.postfix.enabled"),
		Address: c.GetString("server.postfix.address"),
		Port:    c.GetInt("server.postfix.port"),
	}
}

// GetDetector returns the detector configuration
func (c *Config) GetDetector() DetectorConfig {
	return DetectorConfig{
		BrandDomains:      c.GetStringSlice("detector.brand_domains"),
		LookalikeDistance: c.GetInt("detector.lookalike_distance"),
	}
}

// GetAudit returns the audit log configuration
func (c *Config) GetAudit() AuditConfig {
	return AuditConfig{
		Enabled:        c.GetBool("audit.enabled"),
		Type:           c.GetString("audit.type"),
		CSVPath:        c.GetString("audit.csv_path"),
		SQLitePath:     c.GetString("audit.sqlite_path"),
		MySQLDSN:       c.GetString("audit.mysql_dsn"),
		MemoryCapacity: c.GetInt("audit.memory_capacity"),
	}
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:  c.GetString("logging.level"),
		Format: c.GetString("logging.format"),
	}
}

// GetWhitelistedDomains returns sender domains that are never scored
func (c *Config) GetWhitelistedDomains() []string {
	return c.GetStringSlice("phishing.whitelisted_domains")
}
