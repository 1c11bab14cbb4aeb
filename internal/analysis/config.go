package analysis

// Config holds the thresholds and indicator lists used by the engine.
type Config struct {
	BackgroundMinPackets  int     // Packets a conversation must exceed to be a background flow
	BackgroundMinDuration float64 // Seconds a conversation must exceed to be a background flow
	DNSFrequencyThreshold int     // Queries per domain above which tunneling is suspected

	MaliciousPorts     []int
	SuspiciousTLDs     []string // Matched anywhere in the domain, not only as a suffix
	SuspiciousKeywords []string // Matched against the lower-cased domain
	QUICPort           string   // UDP destination port text treated as background QUIC

	ProgressEvery int // Log ingest progress every N packets, 0 disables
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BackgroundMinPackets:  50,
		BackgroundMinDuration: 20.0,
		DNSFrequencyThreshold: 10,
		MaliciousPorts:        []int{4444, 5555, 6666, 7777, 8080, 9999, 31337},
		SuspiciousTLDs:        []string{".tk", ".ml", ".ga", ".cf", ".gq"},
		SuspiciousKeywords:    []string{"temp", "tmp", "test", "malware", "c2", "cmd"},
		QUICPort:              "443",
		ProgressEvery:         1000,
	}
}
