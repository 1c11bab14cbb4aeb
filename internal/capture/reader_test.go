package capture

import (
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

func buildPacket(t *testing.T, transport gopacket.SerializableLayer, ip *layers.IPv4, rest ...gopacket.SerializableLayer) gopacket.Packet {
	t.Helper()

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
		EthernetType: layers.EthernetTypeIPv4,
	}
	switch tl := transport.(type) {
	case *layers.TCP:
		tl.SetNetworkLayerForChecksum(ip)
	case *layers.UDP:
		tl.SetNetworkLayerForChecksum(ip)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	all := append([]gopacket.SerializableLayer{eth, ip, transport}, rest...)
	if err := gopacket.SerializeLayers(buf, opts, all...); err != nil {
		t.Fatalf("failed to serialize packet: %v", err)
	}
	return gopacket.NewPacket(buf.Bytes(), layers.LayerTypeEthernet, gopacket.Default)
}

func ipv4(proto layers.IPProtocol, src, dst string) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: proto,
		SrcIP:    net.ParseIP(src).To4(),
		DstIP:    net.ParseIP(dst).To4(),
	}
}

func TestFactFromPacketDNS(t *testing.T) {
	ip := ipv4(layers.IPProtocolUDP, "10.0.0.1", "8.8.8.8")
	udp := &layers.UDP{SrcPort: 53000, DstPort: 53}
	dns := &layers.DNS{
		ID: 0xbeef,
		RD: true,
		Questions: []layers.DNSQuestion{
			{Name: []byte("update.tk"), Type: layers.DNSTypeA, Class: layers.DNSClassIN},
		},
	}
	packet := buildPacket(t, udp, ip, dns)
	ts := time.Unix(1700000000, 500000000)
	packet.Metadata().Timestamp = ts

	pkt := FactFromPacket(packet)

	if pkt.SrcIP.Value != "10.0.0.1" || pkt.DstIP.Value != "8.8.8.8" {
		t.Errorf("unexpected addresses %+v / %+v", pkt.SrcIP, pkt.DstIP)
	}
	if pkt.UDPDstPort.Value != "53" || pkt.TCPDstPort.Valid {
		t.Errorf("unexpected ports udp=%+v tcp=%+v", pkt.UDPDstPort, pkt.TCPDstPort)
	}
	if pkt.DNSQuery.Value != "update.tk" {
		t.Errorf("DNSQuery = %+v", pkt.DNSQuery)
	}
	if pkt.Protocol.Value != "DNS" {
		t.Errorf("Protocol = %+v, want DNS", pkt.Protocol)
	}
	if pkt.Timestamp.Value != 1700000000.5 {
		t.Errorf("Timestamp = %v, want 1700000000.5", pkt.Timestamp.Value)
	}
	if !pkt.Length.Valid || pkt.Length.Value != len(packet.Data()) {
		t.Errorf("Length = %+v, want %d", pkt.Length, len(packet.Data()))
	}
}

func TestFactFromPacketTCP(t *testing.T) {
	ip := ipv4(layers.IPProtocolTCP, "10.0.0.1", "1.2.3.4")
	tcp := &layers.TCP{SrcPort: 51000, DstPort: 4444, SYN: true, Window: 1024}
	packet := buildPacket(t, tcp, ip)

	pkt := FactFromPacket(packet)

	if pkt.TCPDstPort.Value != "4444" || pkt.UDPDstPort.Valid {
		t.Errorf("unexpected ports tcp=%+v udp=%+v", pkt.TCPDstPort, pkt.UDPDstPort)
	}
	if pkt.Protocol.Value != "TCP" {
		t.Errorf("Protocol = %+v, want TCP", pkt.Protocol)
	}
	if pkt.DNSQuery.Valid {
		t.Errorf("unexpected DNS query %+v", pkt.DNSQuery)
	}
	if pkt.Timestamp.Valid {
		t.Errorf("expected no timestamp, got %v", pkt.Timestamp.Value)
	}
}

func TestFactFromPacketPayloadIsData(t *testing.T) {
	ip := ipv4(layers.IPProtocolUDP, "10.0.0.1", "142.250.1.1")
	udp := &layers.UDP{SrcPort: 50000, DstPort: 443}
	packet := buildPacket(t, udp, ip, gopacket.Payload([]byte{0xc3, 0x00, 0x00, 0x00, 0x01}))

	pkt := FactFromPacket(packet)
	if pkt.Protocol.Value != "DATA" {
		t.Errorf("Protocol = %+v, want DATA", pkt.Protocol)
	}
	if pkt.UDPDstPort.Value != "443" {
		t.Errorf("UDPDstPort = %+v", pkt.UDPDstPort)
	}
}

func TestFactFromPacketGarbage(t *testing.T) {
	packet := gopacket.NewPacket([]byte{0x01, 0x02, 0x03}, layers.LayerTypeEthernet, gopacket.Default)

	pkt := FactFromPacket(packet)
	if pkt.SrcIP.Valid || pkt.DstIP.Valid || pkt.TCPDstPort.Valid || pkt.DNSQuery.Valid {
		t.Errorf("expected no network fields from garbage, got %+v", pkt)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pcap"), "")
	if !errors.Is(err, analysis.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}
