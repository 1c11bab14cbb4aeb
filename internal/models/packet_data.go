package models

// Opt is a field that a decoder may or may not have been able to extract.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some returns a present field holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Valid: true}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Or returns the value if present, def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.Valid {
		return o.Value
	}
	return def
}

// PacketFact holds the fields extracted from one decoded packet.
// Every field is optional; decoders leave a field absent rather than fail.
type PacketFact struct {
	Protocol  Opt[string]  // Highest-layer protocol name (e.g. "DNS", "TLS", "TCP")
	SrcIP     Opt[string]
	DstIP     Opt[string]
	Length    Opt[int]     // Frame length in bytes
	Timestamp Opt[float64] // Capture time, seconds since epoch

	// Ports are kept as the decoder's raw text. Detection rules decide
	// whether to compare them as text or parse them.
	TCPDstPort Opt[string]
	UDPDstPort Opt[string]

	DNSQuery Opt[string] // First query name of a DNS message
}
