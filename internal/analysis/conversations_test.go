package analysis

import (
	"testing"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/models"
)

func TestConversationTrackerDirectional(t *testing.T) {
	tr := NewConversationTracker()

	tr.Observe(models.PacketFact{SrcIP: models.Some("a"), DstIP: models.Some("b"), Length: models.Some(100), Timestamp: models.Some(1.0)})
	tr.Observe(models.PacketFact{SrcIP: models.Some("b"), DstIP: models.Some("a"), Length: models.Some(40)})
	tr.Observe(models.PacketFact{SrcIP: models.Some("a"), DstIP: models.Some("b"), Length: models.Some(60), Timestamp: models.Some(3.5)})

	stats, order := tr.Snapshot()
	if len(stats) != 2 || len(order) != 2 {
		t.Fatalf("expected 2 conversations, got %d (order %d)", len(stats), len(order))
	}
	if order[0] != (ConversationKey{"a", "b"}) || order[1] != (ConversationKey{"b", "a"}) {
		t.Fatalf("unexpected insertion order: %v", order)
	}

	ab := stats[ConversationKey{"a", "b"}]
	if ab.PacketCount != 2 || ab.ByteCount != 160 {
		t.Errorf("a→b: packets=%d bytes=%d, want 2/160", ab.PacketCount, ab.ByteCount)
	}
	if ab.FirstTimestamp.Value != 1.0 || ab.LastTimestamp.Value != 3.5 || ab.TimestampCount != 2 {
		t.Errorf("a→b: unexpected timestamps %+v", ab)
	}

	ba := stats[ConversationKey{"b", "a"}]
	if ba.PacketCount != 1 || ba.ByteCount != 40 {
		t.Errorf("b→a: packets=%d bytes=%d, want 1/40", ba.PacketCount, ba.ByteCount)
	}
	if ba.FirstTimestamp.Valid || ba.LastTimestamp.Valid || ba.TimestampCount != 0 {
		t.Errorf("b→a: expected no timestamps, got %+v", ba)
	}
}

func TestConversationTrackerPartialFields(t *testing.T) {
	tr := NewConversationTracker()

	// No addresses at all: ignored.
	tr.Observe(models.PacketFact{Length: models.Some(500), Timestamp: models.Some(1.0)})
	if tr.Len() != 0 {
		t.Fatalf("expected packet without addresses to be ignored, got %d conversations", tr.Len())
	}

	// Missing length still counts the packet.
	tr.Observe(models.PacketFact{SrcIP: models.Some("10.0.0.1"), DstIP: models.Some("10.0.0.2")})
	// One side missing: no conversation.
	tr.Observe(models.PacketFact{SrcIP: models.Some("10.0.0.1")})
	tr.Observe(models.PacketFact{DstIP: models.Some("10.0.0.1")})

	stats, _ := tr.Snapshot()
	if len(stats) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(stats))
	}
	if st := stats[ConversationKey{"10.0.0.1", "10.0.0.2"}]; st.PacketCount != 1 || st.ByteCount != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestConversationSnapshotIsCopy(t *testing.T) {
	tr := NewConversationTracker()
	pkt := models.PacketFact{SrcIP: models.Some("a"), DstIP: models.Some("b")}
	tr.Observe(pkt)

	stats, _ := tr.Snapshot()
	tr.Observe(pkt)

	if got := stats[ConversationKey{"a", "b"}].PacketCount; got != 1 {
		t.Errorf("snapshot changed after further observation: packets=%d", got)
	}
}

func TestConversationKeyString(t *testing.T) {
	k := ConversationKey{Src: "10.0.0.1", Dst: "8.8.8.8"}
	if k.String() != "10.0.0.1 → 8.8.8.8" {
		t.Errorf("String() = %q", k.String())
	}
}
