package model

// -----------------------------------------------------------------------------
// Enumerations
// -----------------------------------------------------------------------------

// ThreatLevel is the coarse classification used by the backend and the display layer.
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "low"
	ThreatMedium   ThreatLevel = "medium"
	ThreatHigh     ThreatLevel = "high"
	ThreatCritical ThreatLevel = "critical"
)

// CryptoMethod names the protection scheme the backend routes through.
type CryptoMethod string

const (
	CryptoClassical   CryptoMethod = "classical"
	CryptoPostQuantum CryptoMethod = "post_quantum"
)

// Honeypot statuses reported by the backend.
const (
	StatusActive     = "active"
	StatusTriggered  = "triggered"
	StatusMonitoring = "monitoring"
	StatusDisabled   = "disabled"
)

// Blockchains a honeypot can be deployed on.
const (
	ChainEthereum = "ethereum"
	ChainBitcoin  = "bitcoin"
	ChainQuantum  = "quantum"
)

// Protection types for a honeypot wallet.
const (
	ProtectionRSA   = "rsa"
	ProtectionECDSA = "ecdsa"
)

// -----------------------------------------------------------------------------
// Asset records
// -----------------------------------------------------------------------------

// Honeypot is a raw asset record as returned by GET /honeypots.
type Honeypot struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Status                string    `json:"status"`
	LastInteraction       Timestamp `json:"last_interaction"`
	InteractionCount      int       `json:"interaction_count"`
	ThreatIndicators      []string  `json:"threat_indicators"`
	ProtectionType        string    `json:"protection_type,omitempty"`
	MonitoringSensitivity string    `json:"monitoring_sensitivity,omitempty"`
	Blockchain            string    `json:"blockchain,omitempty"`
	Description           string    `json:"description,omitempty"`
	Starred               bool      `json:"starred"`
	ActivatedAt           Timestamp `json:"activated_at"`
	WalletAddress         string    `json:"wallet_address,omitempty"`
	CurrentBalance        *float64  `json:"current_balance"`
	InitialBalance        *float64  `json:"initial_balance"`
}

// Asset is the display-ready view of a Honeypot. It has no identity of its
// own beyond ID and is recomputed every time it is read.
type Asset struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Status           string      `json:"status"`
	StatusLabel      string      `json:"statusLabel"`
	Blockchain       string      `json:"blockchain,omitempty"`
	Description      string      `json:"description,omitempty"`
	Symbol           string      `json:"symbol"`
	Address          string      `json:"address"`
	Balance          string      `json:"balance"`
	Value            string      `json:"value"`
	Change           float64     `json:"change"`
	Starred          bool        `json:"starred"`
	ThreatLevel      ThreatLevel `json:"threatLevel"`
	ThreatProgress   int         `json:"threatProgress"`
	Protection       string      `json:"protection"`
	LastActivity     string      `json:"lastActivity"`
	InteractionCount int         `json:"interactionCount"`
	ThreatIndicators []string    `json:"threatIndicators"`
}

// -----------------------------------------------------------------------------
// Configuration payloads
// -----------------------------------------------------------------------------

// HoneypotConfig is the per-asset configuration.
type HoneypotConfig struct {
	ID                    string       `json:"id,omitempty"`
	MonitoringSensitivity ThreatLevel  `json:"monitoring_sensitivity"`
	ProtectionType        string       `json:"protection_type"`
	AutoResponse          bool         `json:"auto_response"`
	RoutingMethod         CryptoMethod `json:"routing_method"`
}

// SystemSettings is the global alerting/retention configuration.
type SystemSettings struct {
	EmailAlerts        bool        `json:"email_alerts"`
	PushNotifications  bool        `json:"push_notifications"`
	ThreatThreshold    ThreatLevel `json:"threat_threshold"`
	AutoResponse       bool        `json:"auto_response"`
	MonitoringInterval int         `json:"monitoring_interval"` // seconds, 1-3600
	RetentionPeriod    int         `json:"retention_period"`    // days, 1-365
}

// DeployRequest is the body of POST /honeypots/deploy.
type DeployRequest struct {
	Name                  string      `json:"name"`
	Blockchain            string      `json:"blockchain"`
	ProtectionType        string      `json:"protection_type"`
	MonitoringSensitivity ThreatLevel `json:"monitoring_sensitivity"`
	AutoResponse          bool        `json:"auto_response"`
	Description           string      `json:"description,omitempty"`
}

// StarResult is returned by POST /honeypots/{id}/star.
type StarResult struct {
	Starred bool `json:"starred"`
}

// ResetResult is returned by POST /honeypots/reset.
type ResetResult struct {
	ResetCount int `json:"reset_count"`
}

// -----------------------------------------------------------------------------
// Status payloads
// -----------------------------------------------------------------------------

// ThreatStatus from GET /status and the simulation endpoints.
type ThreatStatus struct {
	ThreatLevel  float64      `json:"threat_level"` // 0-100
	Status       ThreatLevel  `json:"status"`
	ActiveCrypto CryptoMethod `json:"active_crypto"`
	Threshold    float64      `json:"threshold"`
	Timestamp    Timestamp    `json:"timestamp"`
	Message      string       `json:"message"`
}

// SystemMetrics from GET /metrics.
type SystemMetrics struct {
	CPUUsage              float64 `json:"cpu_usage"`
	MemoryUsage           float64 `json:"memory_usage"`
	ActiveConnections     int     `json:"active_connections"`
	ProcessedTransactions int     `json:"processed_transactions"`
	ThreatsDetected       int     `json:"threats_detected"`
	UptimeSeconds         float64 `json:"uptime_seconds"`
}

// Transaction from GET /transactions.
type Transaction struct {
	ID                string       `json:"id"`
	Amount            float64      `json:"amount"`
	FromAddress       string       `json:"from_address"`
	ToAddress         string       `json:"to_address"`
	Timestamp         Timestamp    `json:"timestamp"`
	CryptoMethod      CryptoMethod `json:"crypto_method"`
	ThreatLevelAtTime float64      `json:"threat_level_at_time"`
}

// ThreatHistoryPoint is one hourly sample from GET /threat/history.
type ThreatHistoryPoint struct {
	Timestamp   Timestamp `json:"timestamp"`
	ThreatLevel float64   `json:"threat_level"`
	Hour        int       `json:"hour"`
}

// -----------------------------------------------------------------------------
// Real-time payloads
// -----------------------------------------------------------------------------

// HoneypotCompromised is the data of a "honeypot_compromised" envelope.
type HoneypotCompromised struct {
	HoneypotID    string  `json:"honeypot_id"`
	HoneypotName  string  `json:"honeypot_name"`
	WalletAddress string  `json:"wallet_address"`
	AmountDrained float64 `json:"amount_drained"`
	Blockchain    string  `json:"blockchain"`
	ThreatLevel   string  `json:"threat_level"`
	AutoResponded bool    `json:"auto_responded"`
	Timestamp     string  `json:"timestamp"`
	Status        string  `json:"status"`
}

// ThreatUpdate is the data of a "threat_update" envelope.
type ThreatUpdate struct {
	ThreatLevel  float64      `json:"threat_level"`
	Timestamp    string       `json:"timestamp"`
	Status       ThreatLevel  `json:"status"`
	ActiveCrypto CryptoMethod `json:"active_crypto"`
	Threshold    float64      `json:"threshold"`
}
