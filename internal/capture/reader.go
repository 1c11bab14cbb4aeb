package capture

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/models"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// Reader reads packets from a pcap or pcapng file.
type Reader struct {
	handle *pcap.Handle
	source *gopacket.PacketSource
}

var _ analysis.PacketSource = (*Reader)(nil)

// Open opens the capture file at path. A non-empty filter is applied as a
// BPF expression before any packet is read.
func Open(path, filter string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", analysis.ErrSourceNotFound, path, err)
	}

	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture %s: %w", path, err)
	}
	if filter != "" {
		if err := handle.SetBPFFilter(filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("invalid capture filter %q: %w", filter, err)
		}
	}

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	source.DecodeOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

	return &Reader{handle: handle, source: source}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// Next returns the next packet. The capture's io.EOF is passed through
// unchanged; layer decoding problems only leave fields absent.
func (r *Reader) Next(ctx context.Context) (models.PacketFact, error) {
	if err := ctx.Err(); err != nil {
		return models.PacketFact{}, err
	}
	packet, err := r.source.NextPacket()
	if err != nil {
		return models.PacketFact{}, err
	}
	return FactFromPacket(packet), nil
}

// FactFromPacket extracts the fields the analysis engine consumes.
func FactFromPacket(packet gopacket.Packet) models.PacketFact {
	var p models.PacketFact

	if meta := packet.Metadata(); meta != nil {
		if meta.Length > 0 {
			p.Length = models.Some(meta.Length)
		}
		if !meta.Timestamp.IsZero() {
			p.Timestamp = models.Some(float64(meta.Timestamp.UnixNano()) / 1e9)
		}
	}
	if !p.Length.Valid && len(packet.Data()) > 0 {
		p.Length = models.Some(len(packet.Data()))
	}

	if l := packet.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		p.SrcIP = models.Some(ip.SrcIP.String())
		p.DstIP = models.Some(ip.DstIP.String())
	} else if l := packet.Layer(layers.LayerTypeIPv6); l != nil {
		ip := l.(*layers.IPv6)
		p.SrcIP = models.Some(ip.SrcIP.String())
		p.DstIP = models.Some(ip.DstIP.String())
	}

	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		p.TCPDstPort = models.Some(strconv.Itoa(int(tcp.DstPort)))
	}
	if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		p.UDPDstPort = models.Some(strconv.Itoa(int(udp.DstPort)))
	}

	if l := packet.Layer(layers.LayerTypeDNS); l != nil {
		dns := l.(*layers.DNS)
		if len(dns.Questions) > 0 && len(dns.Questions[0].Name) > 0 {
			p.DNSQuery = models.Some(string(dns.Questions[0].Name))
		}
	}

	p.Protocol = highestLayer(packet)
	return p
}

// highestLayer names the innermost successfully decoded layer. Undecoded
// application bytes are reported as DATA.
func highestLayer(packet gopacket.Packet) models.Opt[string] {
	pl := packet.Layers()
	for i := len(pl) - 1; i >= 0; i-- {
		switch t := pl[i].LayerType(); t {
		case gopacket.LayerTypeDecodeFailure:
			continue
		case gopacket.LayerTypePayload:
			return models.Some("DATA")
		default:
			return models.Some(strings.ToUpper(t.String()))
		}
	}
	return models.Opt[string]{}
}
