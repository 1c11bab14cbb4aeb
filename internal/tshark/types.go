package tshark

// EkPacket represents the top-level structure of a Tshark -T ek output line.
type EkPacket struct {
	Timestamp string   `json:"timestamp"`
	Layers    EkLayers `json:"layers"`
}

// EkLayers holds the specific protocol layers we are interested in.
// When using -e flags with -T ek, tshark flattens the structure and replaces dots with underscores.
type EkLayers struct {
	FrameLen       []string `json:"frame_len,omitempty"`
	FrameTimeEpoch []string `json:"frame_time_epoch,omitempty"`
	FrameProtocols []string `json:"frame_protocols,omitempty"`
	IPSrc          []string `json:"ip_src,omitempty"`
	IPDst          []string `json:"ip_dst,omitempty"`
	IPv6Src        []string `json:"ipv6_src,omitempty"`
	IPv6Dst        []string `json:"ipv6_dst,omitempty"`
	TCPDstPort     []string `json:"tcp_dstport,omitempty"`
	UDPDstPort     []string `json:"udp_dstport,omitempty"`
	DnsQuery       []string `json:"dns_qry_name,omitempty"`
}
