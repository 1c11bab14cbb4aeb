package analysis

import (
	"strings"
	"testing"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/models"
)

func TestDetectorMaliciousPorts(t *testing.T) {
	d := NewDetector(DefaultConfig())

	for _, port := range []string{"4444", "5555", "6666", "7777", "8080", "9999", "31337"} {
		pkt := models.PacketFact{
			SrcIP:      models.Some("10.0.0.1"),
			DstIP:      models.Some("1.2.3.4"),
			TCPDstPort: models.Some(port),
			Timestamp:  models.Some(12.5),
		}
		events := d.Inspect(pkt)
		if len(events) != 1 {
			t.Fatalf("port %s: expected 1 event, got %d", port, len(events))
		}
		ev := events[0]
		if ev.Category != CategoryMaliciousPort || ev.Severity != SeverityCritical {
			t.Errorf("port %s: unexpected event %+v", port, ev)
		}
		if !strings.Contains(ev.Detail, port) {
			t.Errorf("port %s: detail %q does not name the port", port, ev.Detail)
		}
		if ev.Timestamp != 12.5 {
			t.Errorf("port %s: timestamp = %v, want 12.5", port, ev.Timestamp)
		}
	}
}

func TestDetectorMaliciousPortSkipsBadInput(t *testing.T) {
	d := NewDetector(DefaultConfig())

	cases := []struct {
		name string
		pkt  models.PacketFact
	}{
		{"absent port", models.PacketFact{SrcIP: models.Some("10.0.0.1")}},
		{"non numeric", models.PacketFact{TCPDstPort: models.Some("http")}},
		{"empty", models.PacketFact{TCPDstPort: models.Some("")}},
		{"benign port", models.PacketFact{TCPDstPort: models.Some("443")}},
		{"udp on bad port", models.PacketFact{UDPDstPort: models.Some("4444")}},
	}
	for _, tc := range cases {
		if events := d.Inspect(tc.pkt); len(events) != 0 {
			t.Errorf("%s: expected no events, got %+v", tc.name, events)
		}
	}
}

func TestDetectorMaliciousPortNamesService(t *testing.T) {
	d := NewDetector(DefaultConfig())
	events := d.Inspect(models.PacketFact{
		SrcIP:      models.Some("10.0.0.1"),
		DstIP:      models.Some("1.2.3.4"),
		TCPDstPort: models.Some("8080"),
	})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	want := "Connection to port 8080 (HTTP-Alt) (10.0.0.1 → 1.2.3.4)"
	if events[0].Detail != want {
		t.Errorf("detail = %q, want %q", events[0].Detail, want)
	}
}

func TestDetectorSuspiciousDomains(t *testing.T) {
	d := NewDetector(DefaultConfig())

	cases := []struct {
		domain string
		want   bool
	}{
		{"update.tk", true},
		{"files.tk.example.com", true}, // substring, not suffix
		{"free.ml", true},
		{"cdn.ga", true},
		{"x.cf", true},
		{"y.gq", true},
		{"TEMP-storage.example.com", true},
		{"my.tmp.host", true},
		{"Malware.example.org", true},
		{"c2.evil.net", true},
		{"cmd.example.net", true},
		{"test.tk", true},
		{"example.com", false},
		{"google.com", false},
		{"EXAMPLE.TK", false}, // TLDs are matched case-sensitively
	}
	for _, tc := range cases {
		events := d.Inspect(models.PacketFact{DNSQuery: models.Some(tc.domain)})
		if !tc.want {
			if len(events) != 0 {
				t.Errorf("%s: expected no events, got %+v", tc.domain, events)
			}
			continue
		}
		if len(events) != 1 {
			t.Fatalf("%s: expected exactly 1 event, got %d", tc.domain, len(events))
		}
		ev := events[0]
		if ev.Category != CategorySuspiciousDNSDomain || ev.Severity != SeverityHigh {
			t.Errorf("%s: unexpected event %+v", tc.domain, ev)
		}
		if !strings.Contains(ev.Detail, tc.domain) {
			t.Errorf("%s: detail %q does not contain the domain", tc.domain, ev.Detail)
		}
	}
}

func TestDetectorBackgroundQUIC(t *testing.T) {
	d := NewDetector(DefaultConfig())

	events := d.Inspect(models.PacketFact{
		SrcIP:      models.Some("10.0.0.1"),
		DstIP:      models.Some("8.8.8.8"),
		UDPDstPort: models.Some("443"),
	})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Category != CategoryBackgroundQUIC || events[0].Severity != SeverityMedium {
		t.Errorf("unexpected event %+v", events[0])
	}
	if events[0].Timestamp != 0 {
		t.Errorf("timestamp = %v, want 0 when absent", events[0].Timestamp)
	}

	// Text comparison: a padded or TCP 443 port is not QUIC.
	for _, pkt := range []models.PacketFact{
		{UDPDstPort: models.Some("0443")},
		{UDPDstPort: models.Some(" 443")},
		{TCPDstPort: models.Some("443")},
	} {
		if got := d.Inspect(pkt); len(got) != 0 {
			t.Errorf("expected no events for %+v, got %+v", pkt, got)
		}
	}
}

func TestDetectorMultipleRulesOnePacket(t *testing.T) {
	d := NewDetector(DefaultConfig())
	events := d.Inspect(models.PacketFact{
		DNSQuery:   models.Some("c2.update.tk"),
		UDPDstPort: models.Some("443"),
		TCPDstPort: models.Some("4444"),
	})
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	want := []Category{CategorySuspiciousDNSDomain, CategoryBackgroundQUIC, CategoryMaliciousPort}
	for i, c := range want {
		if events[i].Category != c {
			t.Errorf("event %d category = %s, want %s", i, events[i].Category, c)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityCritical > SeverityHigh && SeverityHigh > SeverityMedium && SeverityMedium > SeverityLow) {
		t.Fatal("severities are not ordered by urgency")
	}
	if SeverityCritical.String() != "CRITICAL" || SeverityLow.String() != "LOW" {
		t.Errorf("unexpected names: %s, %s", SeverityCritical, SeverityLow)
	}
}
