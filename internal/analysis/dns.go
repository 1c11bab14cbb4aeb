package analysis

import (
	"fmt"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/models"
)

const unknownAddr = "Unknown"

// DNSLog is the append-only record of DNS queries, in arrival order.
type DNSLog struct {
	entries []DNSObservation
}

// NewDNSLog creates an empty log.
func NewDNSLog() *DNSLog {
	return &DNSLog{entries: make([]DNSObservation, 0)}
}

// Observe records the packet's DNS query, if it carries one.
func (l *DNSLog) Observe(pkt models.PacketFact) {
	domain, ok := pkt.DNSQuery.Get()
	if !ok {
		return
	}
	l.entries = append(l.entries, DNSObservation{
		Domain:    domain,
		Timestamp: pkt.Timestamp.Or(0),
		SourceIP:  pkt.SrcIP.Or(unknownAddr),
	})
}

func (l *DNSLog) Len() int {
	return len(l.entries)
}

// Observations returns a copy of the log.
func (l *DNSLog) Observations() []DNSObservation {
	out := make([]DNSObservation, len(l.entries))
	copy(out, l.entries)
	return out
}

// AnalyzeDNSFrequency flags every domain queried more than
// cfg.DNSFrequencyThreshold times. Domains are compared exactly
// (case-sensitive). Events are emitted in first-seen order of the domain.
func AnalyzeDNSFrequency(observations []DNSObservation, cfg Config) []SuspiciousEvent {
	counts := make(map[string]int)
	var domains []string
	for _, obs := range observations {
		if _, seen := counts[obs.Domain]; !seen {
			domains = append(domains, obs.Domain)
		}
		counts[obs.Domain]++
	}

	events := make([]SuspiciousEvent, 0)
	for _, domain := range domains {
		n := counts[domain]
		if n <= cfg.DNSFrequencyThreshold {
			continue
		}
		events = append(events, SuspiciousEvent{
			Category: CategoryFrequentDNS,
			Detail:   fmt.Sprintf("%s queried %d times (possible DNS tunneling)", domain, n),
			Severity: SeverityMedium,
		})
	}
	return events
}
