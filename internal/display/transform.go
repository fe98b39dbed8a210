// Package display derives dashboard-ready Asset records from raw Honeypot
// records.
//
// Every function here is pure: the output depends only on the raw record and
// the instant passed as now. Only LastActivity reads now, so two transforms of
// the same record at different instants differ only in that field.
package display

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/honeywatch/console/internal/model"
)

// DefaultUnitPrice applies to unknown or missing blockchains.
const DefaultUnitPrice = 10.0

// AbsoluteTimeLayout renders a last-interaction timestamp.
const AbsoluteTimeLayout = "Jan 2, 2006, 3:04:05 PM"

var symbols = map[string]string{
	model.ChainEthereum: "ETH",
	model.ChainBitcoin:  "BTC",
	model.ChainQuantum:  "QTC",
}

// Mock prices in display currency per unit.
var unitPrices = map[string]float64{
	model.ChainEthereum: 2000,
	model.ChainBitcoin:  45000,
	model.ChainQuantum:  10,
}

// Transform maps a raw record to its display record at instant now.
func Transform(hp model.Honeypot, now time.Time) model.Asset {
	level := ThreatLevel(hp)

	indicators := hp.ThreatIndicators
	if indicators == nil {
		indicators = []string{}
	}

	return model.Asset{
		ID:               hp.ID,
		Name:             hp.Name,
		Status:           hp.Status,
		StatusLabel:      StatusLabel(hp.Status),
		Blockchain:       hp.Blockchain,
		Description:      hp.Description,
		Symbol:           Symbol(hp.Blockchain),
		Address:          FormatAddress(hp.WalletAddress),
		Balance:          FormatBalance(hp.CurrentBalance),
		Value:            FormatValue(hp.Blockchain, hp.CurrentBalance),
		Change:           ChangePercent(hp.CurrentBalance, hp.InitialBalance),
		Starred:          hp.Starred,
		ThreatLevel:      level,
		ThreatProgress:   ThreatProgress(level),
		Protection:       Protection(hp.ProtectionType),
		LastActivity:     LastActivity(hp, now),
		InteractionCount: hp.InteractionCount,
		ThreatIndicators: indicators,
	}
}

// TransformAll transforms a list, preserving order.
func TransformAll(hps []model.Honeypot, now time.Time) []model.Asset {
	assets := make([]model.Asset, len(hps))
	for i, hp := range hps {
		assets[i] = Transform(hp, now)
	}
	return assets
}

// Symbol returns the ticker symbol for a blockchain, QTC when unknown.
func Symbol(blockchain string) string {
	if s, ok := symbols[blockchain]; ok {
		return s
	}
	return "QTC"
}

// UnitPrice returns the mock price per unit for a blockchain.
func UnitPrice(blockchain string) float64 {
	if p, ok := unitPrices[blockchain]; ok {
		return p
	}
	return DefaultUnitPrice
}

// FormatAddress shortens addresses longer than 10 characters to first6...last4.
// Characters are runes, so the result is always valid UTF-8.
func FormatAddress(addr string) string {
	r := []rune(addr)
	if len(r) <= 10 {
		return addr
	}
	return string(r[:6]) + "..." + string(r[len(r)-4:])
}

// FormatBalance renders a balance with exactly four decimals.
func FormatBalance(balance *float64) string {
	if balance == nil {
		return "0.0000"
	}
	return formatFixed(*balance, 4)
}

// FormatValue renders balance × unit price as "$N.NN".
func FormatValue(blockchain string, balance *float64) string {
	if balance == nil {
		return "$0.00"
	}
	return "$" + formatFixed(*balance*UnitPrice(blockchain), 2)
}

// ChangePercent returns the balance change relative to the initial balance.
// It is 0 unless both balances are present and initial is non-zero.
func ChangePercent(current, initial *float64) float64 {
	if current == nil || initial == nil || *initial == 0 {
		return 0
	}
	return (*current - *initial) / *initial * 100
}

// ThreatLevel classifies a record: any indicator or a triggered status is
// high; otherwise the configured sensitivity applies, defaulting to low.
func ThreatLevel(hp model.Honeypot) model.ThreatLevel {
	if len(hp.ThreatIndicators) > 0 {
		return model.ThreatHigh
	}
	if hp.Status == model.StatusTriggered {
		return model.ThreatHigh
	}
	if hp.MonitoringSensitivity != "" {
		return model.ThreatLevel(hp.MonitoringSensitivity)
	}
	return model.ThreatLow
}

// ThreatProgress maps a level onto a 0-100 gauge value.
func ThreatProgress(level model.ThreatLevel) int {
	switch level {
	case model.ThreatLow:
		return 25
	case model.ThreatMedium:
		return 60
	case model.ThreatHigh:
		return 85
	default:
		return 0
	}
}

// StatusLabel returns the badge text for a status.
func StatusLabel(status string) string {
	switch status {
	case model.StatusActive:
		return "Active"
	case model.StatusTriggered:
		return "Triggered"
	case model.StatusMonitoring:
		return "Monitoring"
	case model.StatusDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// Protection returns the protection type, ecdsa when unset.
func Protection(protectionType string) string {
	if protectionType == "" {
		return model.ProtectionECDSA
	}
	return protectionType
}

// LastActivity renders the activity column. A last interaction is shown as an
// absolute time in now's location; otherwise the time since activation;
// otherwise "Never".
func LastActivity(hp model.Honeypot, now time.Time) string {
	if !hp.LastInteraction.IsZero() {
		return hp.LastInteraction.In(now.Location()).Format(AbsoluteTimeLayout)
	}
	if !hp.ActivatedAt.IsZero() {
		return "Active for " + FormatElapsed(now.Sub(hp.ActivatedAt.Time))
	}
	return "Never"
}

// FormatElapsed renders d as "{H}h {M}m", or "{M}m" under an hour. Negative
// durations (clock skew) render as "0m".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// formatFixed renders x with exactly digits decimals. The exact binary value
// is rounded half away from zero, so a tie such as 0.125 becomes 0.13 where
// strconv would round it to even.
func formatFixed(x float64, digits int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', digits, 64)
	}

	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	r := new(big.Rat).SetFloat64(x)
	r.Mul(r, new(big.Rat).SetInt(scale))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	s := n.String()
	if digits == 0 {
		return sign + s
	}
	if len(s) <= digits {
		s = strings.Repeat("0", digits-len(s)+1) + s
	}
	return sign + s[:len(s)-digits] + "." + s[len(s)-digits:]
}
