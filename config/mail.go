package config

import "os"

const (
	defaultMailServer = "smtp.gmail.com"
	defaultMailPort   = 587
)

// MailConfig holds the outbound SMTP settings used for notifications.
type MailConfig struct {
	Server   string
	Port     int
	UseTLS   bool
	Username string
	Password string
	Sender   string
}

// Enabled reports whether enough is configured to attempt delivery.
func (m MailConfig) Enabled() bool {
	return m.Server != "" && m.Username != "" && m.Password != ""
}

// GetMailConfig reads MAIL_* variables. The sender defaults to the username.
func GetMailConfig() MailConfig {
	m := MailConfig{
		Server:   os.Getenv("MAIL_SERVER"),
		Port:     getInt("MAIL_PORT", defaultMailPort),
		UseTLS:   getBool("MAIL_USE_TLS", true),
		Username: os.Getenv("MAIL_USERNAME"),
		Password: os.Getenv("MAIL_PASSWORD"),
		Sender:   os.Getenv("MAIL_SENDER"),
	}
	if m.Server == "" {
		m.Server = defaultMailServer
	}
	if m.Sender == "" {
		m.Sender = m.Username
	}
	return m
}
