package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/models"
)

// Detector evaluates the per-packet rules. It keeps no state between
// packets, so findings are available as soon as a packet is inspected.
type Detector struct {
	config         Config
	maliciousPorts map[int]struct{}
	keywords       []string
}

// NewDetector creates a detector for the indicator lists in cfg.
func NewDetector(cfg Config) *Detector {
	ports := make(map[int]struct{}, len(cfg.MaliciousPorts))
	for _, p := range cfg.MaliciousPorts {
		ports[p] = struct{}{}
	}
	keywords := make([]string, len(cfg.SuspiciousKeywords))
	for i, kw := range cfg.SuspiciousKeywords {
		keywords[i] = strings.ToLower(kw)
	}
	return &Detector{
		config:         cfg,
		maliciousPorts: ports,
		keywords:       keywords,
	}
}

// Inspect runs every rule against the packet. Each rule fires at most once,
// so a packet yields between zero and three events.
func (d *Detector) Inspect(pkt models.PacketFact) []SuspiciousEvent {
	var events []SuspiciousEvent

	// Rule 1: Suspicious DNS domain
	if ev, ok := d.detectSuspiciousDomain(pkt); ok {
		events = append(events, ev)
	}

	// Rule 2: Background QUIC
	if ev, ok := d.detectBackgroundQUIC(pkt); ok {
		events = append(events, ev)
	}

	// Rule 3: Malicious destination port
	if ev, ok := d.detectMaliciousPort(pkt); ok {
		events = append(events, ev)
	}

	return events
}

// detectSuspiciousDomain flags queries for throwaway TLDs or names that
// contain well-known malware keywords.
func (d *Detector) detectSuspiciousDomain(pkt models.PacketFact) (SuspiciousEvent, bool) {
	domain, ok := pkt.DNSQuery.Get()
	if !ok || !d.isSuspiciousDomain(domain) {
		return SuspiciousEvent{}, false
	}
	return SuspiciousEvent{
		Category:  CategorySuspiciousDNSDomain,
		Detail:    fmt.Sprintf("Suspicious domain: %s", domain),
		Severity:  SeverityHigh,
		Timestamp: pkt.Timestamp.Or(0),
	}, true
}

func (d *Detector) isSuspiciousDomain(domain string) bool {
	for _, tld := range d.config.SuspiciousTLDs {
		if strings.Contains(domain, tld) {
			return true
		}
	}
	lower := strings.ToLower(domain)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// detectBackgroundQUIC assumes any UDP traffic to the QUIC port is QUIC.
// The port is compared as the decoder's text, not as a number.
func (d *Detector) detectBackgroundQUIC(pkt models.PacketFact) (SuspiciousEvent, bool) {
	port, ok := pkt.UDPDstPort.Get()
	if !ok || port != d.config.QUICPort {
		return SuspiciousEvent{}, false
	}
	return SuspiciousEvent{
		Category: CategoryBackgroundQUIC,
		Detail: fmt.Sprintf("%s → %s (UDP %s)",
			pkt.SrcIP.Or(unknownAddr), pkt.DstIP.Or(unknownAddr), port),
		Severity:  SeverityMedium,
		Timestamp: pkt.Timestamp.Or(0),
	}, true
}

// detectMaliciousPort flags TCP connections to ports used by common
// backdoors and C2 frameworks. Non-numeric ports are skipped.
func (d *Detector) detectMaliciousPort(pkt models.PacketFact) (SuspiciousEvent, bool) {
	raw, ok := pkt.TCPDstPort.Get()
	if !ok {
		return SuspiciousEvent{}, false
	}
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return SuspiciousEvent{}, false
	}
	if _, bad := d.maliciousPorts[port]; !bad {
		return SuspiciousEvent{}, false
	}

	label := strconv.Itoa(port)
	if name, known := LookupService(port); known {
		label = fmt.Sprintf("%d (%s)", port, name)
	}
	return SuspiciousEvent{
		Category: CategoryMaliciousPort,
		Detail: fmt.Sprintf("Connection to port %s (%s → %s)",
			label, pkt.SrcIP.Or(unknownAddr), pkt.DstIP.Or(unknownAddr)),
		Severity:  SeverityCritical,
		Timestamp: pkt.Timestamp.Or(0),
	}, true
}
