package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"github.com/google/uuid"
)

// Export is the JSON document written for a result.
type Export struct {
	RunID           string               `json:"run_id"`
	GeneratedAt     time.Time            `json:"generated_at"`
	Capture         string               `json:"capture"`
	Risk            analysis.RiskLevel   `json:"risk"`
	Packets         int64                `json:"packets"`
	Events          []ExportEvent        `json:"events"`
	BackgroundFlows []ExportFlow         `json:"background_flows"`
	DNSQueries      []ExportDNSQuery     `json:"dns_queries"`
	Conversations   []ExportConversation `json:"conversations"`
	Protocols       map[string]int64     `json:"protocols"`
}

type ExportEvent struct {
	Category  analysis.Category `json:"category"`
	Severity  analysis.Severity `json:"severity"`
	Detail    string            `json:"detail"`
	Timestamp float64           `json:"timestamp"`
}

type ExportFlow struct {
	Src                      string  `json:"src"`
	Dst                      string  `json:"dst"`
	Packets                  int64   `json:"packets"`
	Bytes                    int64   `json:"bytes"`
	DurationSeconds          float64 `json:"duration_seconds"`
	ThroughputBytesPerSecond float64 `json:"throughput_bytes_per_second"`
}

type ExportDNSQuery struct {
	Domain    string  `json:"domain"`
	Timestamp float64 `json:"timestamp"`
	Src       string  `json:"src"`
}

type ExportConversation struct {
	Src            string   `json:"src"`
	Dst            string   `json:"dst"`
	Packets        int64    `json:"packets"`
	Bytes          int64    `json:"bytes"`
	FirstTimestamp *float64 `json:"first_timestamp,omitempty"`
	LastTimestamp  *float64 `json:"last_timestamp,omitempty"`
}

// NewExport converts res to its JSON document. Engine order is preserved.
func NewExport(res *analysis.Result, capture string) Export {
	exp := Export{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Capture:         capture,
		Risk:            analysis.AssessRisk(res),
		Packets:         res.PacketCount,
		Events:          make([]ExportEvent, 0, len(res.Events)),
		BackgroundFlows: make([]ExportFlow, 0, len(res.BackgroundFlows)),
		DNSQueries:      make([]ExportDNSQuery, 0, len(res.DNSObservations)),
		Conversations:   make([]ExportConversation, 0, len(res.ConversationOrder)),
		Protocols:       res.ProtocolStats,
	}
	for _, ev := range res.Events {
		exp.Events = append(exp.Events, ExportEvent{
			Category:  ev.Category,
			Severity:  ev.Severity,
			Detail:    ev.Detail,
			Timestamp: ev.Timestamp,
		})
	}
	for _, f := range res.BackgroundFlows {
		exp.BackgroundFlows = append(exp.BackgroundFlows, ExportFlow{
			Src:                      f.Key.Src,
			Dst:                      f.Key.Dst,
			Packets:                  f.PacketCount,
			Bytes:                    f.ByteCount,
			DurationSeconds:          f.DurationSeconds,
			ThroughputBytesPerSecond: f.ThroughputBytesPerSecond,
		})
	}
	for _, q := range res.DNSObservations {
		exp.DNSQueries = append(exp.DNSQueries, ExportDNSQuery{Domain: q.Domain, Timestamp: q.Timestamp, Src: q.SourceIP})
	}
	for _, key := range res.ConversationOrder {
		st := res.Conversations[key]
		c := ExportConversation{Src: key.Src, Dst: key.Dst, Packets: st.PacketCount, Bytes: st.ByteCount}
		if ts, ok := st.FirstTimestamp.Get(); ok {
			c.FirstTimestamp = &ts
		}
		if ts, ok := st.LastTimestamp.Get(); ok {
			c.LastTimestamp = &ts
		}
		exp.Conversations = append(exp.Conversations, c)
	}
	return exp
}

// WriteJSON writes the JSON export of res.
func WriteJSON(w io.Writer, res *analysis.Result, capture string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewExport(res, capture)); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}
