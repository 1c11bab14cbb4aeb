package analysis

import (
	"fmt"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/models"
)

// Severity ranks a finding by operator-facing urgency.
// Higher values are more urgent.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Category identifies the rule that produced a finding.
type Category string

const (
	CategoryMaliciousPort       Category = "MaliciousPort"
	CategorySuspiciousDNSDomain Category = "SuspiciousDnsDomain"
	CategoryBackgroundQUIC      Category = "BackgroundQuic"
	CategoryFrequentDNS         Category = "FrequentDns"
)

// SuspiciousEvent is a single finding. Timestamp is 0 when unknown.
type SuspiciousEvent struct {
	Category  Category
	Detail    string
	Severity  Severity
	Timestamp float64
}

// ConversationKey is a directional (source, destination) address pair.
// A→B and B→A are distinct conversations.
type ConversationKey struct {
	Src string
	Dst string
}

func (k ConversationKey) String() string {
	return k.Src + " → " + k.Dst
}

// ConversationStats holds the counters of one conversation.
// First and last timestamps are in arrival order.
type ConversationStats struct {
	PacketCount    int64
	ByteCount      int64
	FirstTimestamp models.Opt[float64]
	LastTimestamp  models.Opt[float64]
	TimestampCount int
}

// DNSObservation records one DNS query.
type DNSObservation struct {
	Domain    string
	Timestamp float64
	SourceIP  string
}

// BackgroundFlow is a long-lived, high-volume conversation.
type BackgroundFlow struct {
	Key                      ConversationKey
	PacketCount              int64
	ByteCount                int64
	DurationSeconds          float64
	ThroughputBytesPerSecond float64
}

// Result is the frozen outcome of one analysis run. It shares no memory
// with the engine that produced it; consumers must treat it as read-only.
type Result struct {
	PacketCount       int64
	Events            []SuspiciousEvent
	BackgroundFlows   []BackgroundFlow
	DNSObservations   []DNSObservation
	Conversations     map[ConversationKey]ConversationStats
	ConversationOrder []ConversationKey // Insertion order of Conversations
	ProtocolStats     map[string]int64
}

// CountBySeverity returns how many events carry each severity.
func (r *Result) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, ev := range r.Events {
		counts[ev.Severity]++
	}
	return counts
}

// CountByCategory returns how many events each rule produced.
func (r *Result) CountByCategory() map[Category]int {
	counts := make(map[Category]int)
	for _, ev := range r.Events {
		counts[ev.Category]++
	}
	return counts
}
