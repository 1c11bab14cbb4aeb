package analysis

import "math"

// AnalyzeBackground returns the conversations that stayed active longer than
// cfg.BackgroundMinDuration with more than cfg.BackgroundMinPackets packets.
// Flows are emitted in the given conversation order, unsorted.
func AnalyzeBackground(conversations map[ConversationKey]ConversationStats, order []ConversationKey, cfg Config) []BackgroundFlow {
	flows := make([]BackgroundFlow, 0)
	for _, key := range order {
		st, ok := conversations[key]
		if !ok || st.PacketCount <= int64(cfg.BackgroundMinPackets) || st.TimestampCount < 2 {
			continue
		}

		duration := st.LastTimestamp.Value - st.FirstTimestamp.Value
		if duration <= cfg.BackgroundMinDuration {
			continue
		}

		var throughput float64
		if duration != 0 {
			throughput = round2(float64(st.ByteCount) / duration)
		}
		flows = append(flows, BackgroundFlow{
			Key:                      key,
			PacketCount:              st.PacketCount,
			ByteCount:                st.ByteCount,
			DurationSeconds:          round2(duration),
			ThroughputBytesPerSecond: throughput,
		})
	}
	return flows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
