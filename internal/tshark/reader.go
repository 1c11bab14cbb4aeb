package tshark

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/models"
)

const maxLineSize = 1 << 20

// Reader streams packets from a capture file through tshark.
type Reader struct {
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	scanner *bufio.Scanner
	stderr  *bytes.Buffer
	done    bool
}

var _ analysis.PacketSource = (*Reader)(nil)

// Open starts tshark on the capture file at path.
func Open(ctx context.Context, binary, path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", analysis.ErrSourceNotFound, path, err)
	}
	if binary == "" {
		binary = "tshark"
	}

	// -r: read from file
	// -n: disable name resolution
	// -T ek: output in Elasticsearch JSON format
	// -e ...: fields to extract
	args := []string{
		"-r", path,
		"-n", "-T", "ek",
		"-e", "frame.len",
		"-e", "frame.time_epoch",
		"-e", "frame.protocols",
		"-e", "ip.src", "-e", "ip.dst",
		"-e", "ipv6.src", "-e", "ipv6.dst",
		"-e", "tcp.dstport",
		"-e", "udp.dstport",
		"-e", "dns.qry.name",
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, binary, args...)

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start tshark: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	return &Reader{
		cmd:     cmd,
		cancel:  cancel,
		scanner: scanner,
		stderr:  stderr,
	}, nil
}

// Next returns the next decoded packet, io.EOF once tshark has exited
// cleanly, or the tshark failure otherwise.
func (r *Reader) Next(ctx context.Context) (models.PacketFact, error) {
	if r.done {
		return models.PacketFact{}, io.EOF
	}

	for r.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return models.PacketFact{}, err
		}
		if pkt, ok := decodeLine(r.scanner.Bytes()); ok {
			return pkt, nil
		}
	}

	r.done = true
	scanErr := r.scanner.Err()
	waitErr := r.cmd.Wait()
	r.cancel()
	if scanErr != nil {
		return models.PacketFact{}, fmt.Errorf("reading tshark output: %w", scanErr)
	}
	if waitErr != nil {
		return models.PacketFact{}, fmt.Errorf("tshark failed: %w: %s", waitErr, strings.TrimSpace(r.stderr.String()))
	}
	return models.PacketFact{}, io.EOF
}

// Close stops tshark if it is still running.
func (r *Reader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	r.cancel()
	err := r.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Killed by cancel.
		return nil
	}
	return err
}

// decodeLine parses one ek line. Index lines and malformed lines are skipped.
func decodeLine(line []byte) (models.PacketFact, bool) {
	// Tshark -T ek outputs an index line before each packet.
	// We look for lines containing "layers".
	if len(bytes.TrimSpace(line)) == 0 || !bytes.Contains(line, []byte(`"layers"`)) {
		return models.PacketFact{}, false
	}

	var ekPkt EkPacket
	if err := json.Unmarshal(line, &ekPkt); err != nil {
		return models.PacketFact{}, false
	}
	return convertToFact(ekPkt), true
}

func convertToFact(ek EkPacket) models.PacketFact {
	var p models.PacketFact
	l := ek.Layers

	if v, ok := first(l.FrameLen); ok {
		if n, err := strconv.Atoi(v); err == nil {
			p.Length = models.Some(n)
		}
	}
	if v, ok := first(l.FrameTimeEpoch); ok {
		if ts, err := strconv.ParseFloat(v, 64); err == nil {
			p.Timestamp = models.Some(ts)
		}
	}
	if v, ok := first(l.FrameProtocols); ok {
		p.Protocol = highestLayer(v)
	}

	// IPv4 addresses take precedence over IPv6.
	if v, ok := first(l.IPSrc); ok {
		p.SrcIP = models.Some(v)
	} else if v, ok := first(l.IPv6Src); ok {
		p.SrcIP = models.Some(v)
	}
	if v, ok := first(l.IPDst); ok {
		p.DstIP = models.Some(v)
	} else if v, ok := first(l.IPv6Dst); ok {
		p.DstIP = models.Some(v)
	}

	if v, ok := first(l.TCPDstPort); ok {
		p.TCPDstPort = models.Some(v)
	}
	if v, ok := first(l.UDPDstPort); ok {
		p.UDPDstPort = models.Some(v)
	}
	if v, ok := first(l.DnsQuery); ok {
		p.DNSQuery = models.Some(v)
	}

	return p
}

// highestLayer picks the last entry of frame.protocols ("eth:ethertype:ip:udp:dns").
func highestLayer(protocols string) models.Opt[string] {
	parts := strings.Split(protocols, ":")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return models.Opt[string]{}
	}
	return models.Some(strings.ToUpper(last))
}

func first(values []string) (string, bool) {
	if len(values) == 0 || values[0] == "" {
		return "", false
	}
	return values[0], true
}
