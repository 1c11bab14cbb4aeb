package metrics

import (
	"fmt"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"github.com/prometheus/client_golang/prometheus"
)

// ResultCollector exposes a finished analysis as Prometheus gauges.
type ResultCollector struct {
	result  *analysis.Result
	capture string

	packetsDesc         *prometheus.Desc
	eventsDesc          *prometheus.Desc
	backgroundFlowsDesc *prometheus.Desc
	dnsQueriesDesc      *prometheus.Desc
	conversationsDesc   *prometheus.Desc
	protocolPacketsDesc *prometheus.Desc
	riskDesc            *prometheus.Desc
}

// NewResultCollector creates a collector for res, labelled with the capture name.
func NewResultCollector(res *analysis.Result, capture string) *ResultCollector {
	constLabels := prometheus.Labels{"capture": capture}
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc("trafficsuspect_"+name, help, labels, constLabels)
	}
	return &ResultCollector{
		result:              res,
		capture:             capture,
		packetsDesc:         desc("packets_analyzed", "Packets read from the capture"),
		eventsDesc:          desc("events", "Suspicious events by rule and severity", "category", "severity"),
		backgroundFlowsDesc: desc("background_flows", "Long-lived high-volume conversations"),
		dnsQueriesDesc:      desc("dns_queries", "DNS queries observed"),
		conversationsDesc:   desc("conversations", "Distinct directional IP conversations"),
		protocolPacketsDesc: desc("protocol_packets", "Packets by highest-layer protocol", "protocol"),
		riskDesc:            desc("risk_level", "Overall risk verdict (1 = current level)", "level"),
	}
}

func (c *ResultCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.packetsDesc
	ch <- c.eventsDesc
	ch <- c.backgroundFlowsDesc
	ch <- c.dnsQueriesDesc
	ch <- c.conversationsDesc
	ch <- c.protocolPacketsDesc
	ch <- c.riskDesc
}

type eventKey struct {
	category analysis.Category
	severity analysis.Severity
}

func (c *ResultCollector) Collect(ch chan<- prometheus.Metric) {
	res := c.result

	ch <- prometheus.MustNewConstMetric(c.packetsDesc, prometheus.GaugeValue, float64(res.PacketCount))
	ch <- prometheus.MustNewConstMetric(c.backgroundFlowsDesc, prometheus.GaugeValue, float64(len(res.BackgroundFlows)))
	ch <- prometheus.MustNewConstMetric(c.dnsQueriesDesc, prometheus.GaugeValue, float64(len(res.DNSObservations)))
	ch <- prometheus.MustNewConstMetric(c.conversationsDesc, prometheus.GaugeValue, float64(len(res.Conversations)))

	counts := make(map[eventKey]int)
	for _, ev := range res.Events {
		counts[eventKey{ev.Category, ev.Severity}]++
	}
	for k, n := range counts {
		ch <- prometheus.MustNewConstMetric(c.eventsDesc, prometheus.GaugeValue, float64(n), string(k.category), k.severity.String())
	}

	for proto, n := range res.ProtocolStats {
		ch <- prometheus.MustNewConstMetric(c.protocolPacketsDesc, prometheus.GaugeValue, float64(n), proto)
	}

	current := analysis.AssessRisk(res)
	for _, level := range []analysis.RiskLevel{analysis.RiskLow, analysis.RiskModerate, analysis.RiskHigh} {
		v := 0.0
		if level == current {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.riskDesc, prometheus.GaugeValue, v, string(level))
	}
}

// WriteTextfile writes the result's metrics in the node_exporter textfile format.
func WriteTextfile(path string, res *analysis.Result, capture string) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewResultCollector(res, capture)); err != nil {
		return fmt.Errorf("register result collector: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
