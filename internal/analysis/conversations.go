package analysis

import "github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/models"

// ConversationTracker aggregates per-direction packet and byte counters.
type ConversationTracker struct {
	stats map[ConversationKey]*ConversationStats
	order []ConversationKey
}

// NewConversationTracker creates an empty tracker.
func NewConversationTracker() *ConversationTracker {
	return &ConversationTracker{
		stats: make(map[ConversationKey]*ConversationStats),
	}
}

// Observe counts the packet against its (src, dst) conversation.
// Packets without both addresses are not part of any conversation.
func (t *ConversationTracker) Observe(pkt models.PacketFact) {
	src, okSrc := pkt.SrcIP.Get()
	dst, okDst := pkt.DstIP.Get()
	if !okSrc || !okDst {
		return
	}
	key := ConversationKey{Src: src, Dst: dst}

	st, ok := t.stats[key]
	if !ok {
		st = &ConversationStats{}
		t.stats[key] = st
		t.order = append(t.order, key)
	}

	st.PacketCount++
	if n, ok := pkt.Length.Get(); ok && n > 0 {
		st.ByteCount += int64(n)
	}
	if ts, ok := pkt.Timestamp.Get(); ok {
		if !st.FirstTimestamp.Valid {
			st.FirstTimestamp = models.Some(ts)
		}
		st.LastTimestamp = models.Some(ts)
		st.TimestampCount++
	}
}

// Len returns the number of distinct conversations.
func (t *ConversationTracker) Len() int {
	return len(t.order)
}

// Snapshot copies the current counters and their insertion order.
func (t *ConversationTracker) Snapshot() (map[ConversationKey]ConversationStats, []ConversationKey) {
	stats := make(map[ConversationKey]ConversationStats, len(t.stats))
	for k, st := range t.stats {
		stats[k] = *st
	}
	order := make([]ConversationKey, len(t.order))
	copy(order, t.order)
	return stats, order
}
