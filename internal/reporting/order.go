package reporting

import (
	"sort"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
)

// ProtocolStat holds the packet count of one protocol.
type ProtocolStat struct {
	Protocol string
	Count    int64
	Percent  float64
}

// SortFlowsByPackets returns a copy of flows, busiest first.
func SortFlowsByPackets(flows []analysis.BackgroundFlow) []analysis.BackgroundFlow {
	out := make([]analysis.BackgroundFlow, len(flows))
	copy(out, flows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PacketCount > out[j].PacketCount
	})
	return out
}

// SortProtocols returns the protocol distribution, sorted descending by count.
// Ties are broken by name so the output is stable.
func SortProtocols(counts map[string]int64) []ProtocolStat {
	var total int64
	for _, n := range counts {
		total += n
	}

	stats := make([]ProtocolStat, 0, len(counts))
	for proto, n := range counts {
		var pct float64
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		stats = append(stats, ProtocolStat{Protocol: proto, Count: n, Percent: pct})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Protocol < stats[j].Protocol
	})
	return stats
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
