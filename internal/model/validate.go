package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Valid reports whether m is one of the two known protection schemes.
func (m CryptoMethod) Valid() bool {
	return m == CryptoClassical || m == CryptoPostQuantum
}

// validSensitivity accepts the three levels a user may configure. Critical is
// backend-assigned only.
func validSensitivity(l ThreatLevel) bool {
	return l == ThreatLow || l == ThreatMedium || l == ThreatHigh
}

func validProtection(p string) bool {
	return p == ProtectionRSA || p == ProtectionECDSA
}

func validChain(c string) bool {
	return c == ChainEthereum || c == ChainBitcoin || c == ChainQuantum
}

// Validate checks the request against the backend's field constraints.
func (r DeployRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if n := utf8.RuneCountInString(r.Name); n > 100 {
		return fmt.Errorf("name must be at most 100 characters, got %d", n)
	}
	if !validChain(r.Blockchain) {
		return fmt.Errorf("blockchain must be ethereum, bitcoin or quantum, got %q", r.Blockchain)
	}
	if !validProtection(r.ProtectionType) {
		return fmt.Errorf("protection_type must be rsa or ecdsa, got %q", r.ProtectionType)
	}
	if !validSensitivity(r.MonitoringSensitivity) {
		return fmt.Errorf("monitoring_sensitivity must be low, medium or high, got %q", r.MonitoringSensitivity)
	}
	if n := utf8.RuneCountInString(r.Description); n > 500 {
		return fmt.Errorf("description must be at most 500 characters, got %d", n)
	}
	return nil
}

// Validate checks the configuration against the backend's field constraints.
func (c HoneypotConfig) Validate() error {
	if !validSensitivity(c.MonitoringSensitivity) {
		return fmt.Errorf("monitoring_sensitivity must be low, medium or high, got %q", c.MonitoringSensitivity)
	}
	if !validProtection(c.ProtectionType) {
		return fmt.Errorf("protection_type must be rsa or ecdsa, got %q", c.ProtectionType)
	}
	if !c.RoutingMethod.Valid() {
		return fmt.Errorf("routing_method must be classical or post_quantum, got %q", c.RoutingMethod)
	}
	return nil
}

// Validate checks the settings against the backend's field constraints.
func (s SystemSettings) Validate() error {
	if !validSensitivity(s.ThreatThreshold) {
		return fmt.Errorf("threat_threshold must be low, medium or high, got %q", s.ThreatThreshold)
	}
	if s.MonitoringInterval < 1 || s.MonitoringInterval > 3600 {
		return fmt.Errorf("monitoring_interval must be between 1 and 3600, got %d", s.MonitoringInterval)
	}
	if s.RetentionPeriod < 1 || s.RetentionPeriod > 365 {
		return fmt.Errorf("retention_period must be between 1 and 365, got %d", s.RetentionPeriod)
	}
	return nil
}
