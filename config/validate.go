package config

import (
	"fmt"
	"net"
	"strings"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateJwt(&cfg.Jwt); err != nil {
		return fmt.Errorf("jwt config validation failed: %w", err)
	}
	if err := validateOtp(&cfg.Otp); err != nil {
		return fmt.Errorf("otp config validation failed: %w", err)
	}
	if err := validateSmtp(&cfg.Smtp); err != nil {
		return fmt.Errorf("smtp config validation failed: %w", err)
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}
	if err := validateAssistant(&cfg.Assistant); err != nil {
		return fmt.Errorf("assistant config validation failed: %w", err)
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or
// :port format. If only a port is provided (e.g., ":8080"), it defaults the
// host to "localhost". The port part is mandatory.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		// Check if it's just a port (e.g., ":8080")
		if strings.HasPrefix(server.Addr, ":") {
			port = strings.TrimPrefix(server.Addr, ":")
			host = "localhost" // Default host
		} else {
			return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
		}
	}

	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}

	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	return nil
}

func validateJwt(jwt *Jwt) error {
	if len(jwt.AuthSecret) < 32 {
		return fmt.Errorf("auth secret must be at least 32 characters, got %d", len(jwt.AuthSecret))
	}
	if len(jwt.RefreshSecret) < 32 {
		return fmt.Errorf("refresh secret must be at least 32 characters, got %d", len(jwt.RefreshSecret))
	}
	if jwt.AuthTokenDuration.Duration <= 0 {
		return fmt.Errorf("auth token duration must be positive")
	}
	if jwt.RefreshTokenDuration.Duration <= jwt.AuthTokenDuration.Duration {
		return fmt.Errorf("refresh token duration must exceed auth token duration")
	}
	return nil
}

func validateOtp(otp *Otp) error {
	if otp.Digits < 4 || otp.Digits > 8 {
		return fmt.Errorf("otp digits must be between 4 and 8, got %d", otp.Digits)
	}
	if otp.Window.Duration <= 0 {
		return fmt.Errorf("otp window must be positive")
	}
	return nil
}

func validateSmtp(smtp *Smtp) error {
	if !smtp.Enabled {
		return nil
	}
	if smtp.Host == "" {
		return fmt.Errorf("smtp host cannot be empty when smtp is enabled")
	}
	if smtp.Port <= 0 || smtp.Port > 65535 {
		return fmt.Errorf("invalid smtp port %d", smtp.Port)
	}
	if smtp.FromAddress == "" {
		return fmt.Errorf("smtp from address cannot be empty when smtp is enabled")
	}
	return nil
}

func validateStorage(storage *Storage) error {
	if !storage.Enabled {
		return nil
	}
	if storage.Bucket == "" {
		return fmt.Errorf("storage bucket cannot be empty when storage is enabled")
	}
	if storage.MaxUpload <= 0 {
		return fmt.Errorf("storage max upload must be positive")
	}
	return nil
}

func validateAssistant(assistant *Assistant) error {
	if !assistant.Enabled {
		return nil
	}
	if assistant.BaseURL == "" {
		return fmt.Errorf("assistant base url cannot be empty when assistant is enabled")
	}
	if assistant.Model == "" {
		return fmt.Errorf("assistant model cannot be empty when assistant is enabled")
	}
	return nil
}
