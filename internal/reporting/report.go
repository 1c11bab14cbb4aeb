package reporting

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"github.com/dustin/go-humanize"
)

const (
	maxReportEvents    = 50
	maxReportFlows     = 20
	maxReportProtocols = 10
)

// GenerateReport renders res to path in the given format ("html" or "json").
// capture names the analyzed file in the report.
func GenerateReport(res *analysis.Result, capture, path, format string) error {
	var write func(io.Writer, *analysis.Result, string) error
	switch format {
	case "html":
		write = WriteHTML
	case "json":
		write = WriteJSON
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file, res, capture); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

type reportEvent struct {
	Time     string
	Type     analysis.Category
	Detail   string
	Severity string
	Class    string
}

type reportFlow struct {
	Conversation string
	Packets      int64
	Bytes        int64
	Duration     float64
	Throughput   float64
}

type reportData struct {
	Generated     string
	Capture       string
	Packets       int64
	EventCount    int
	FlowCount     int
	DNSCount      int
	Conversations int
	Events        []reportEvent
	HiddenEvents  int
	Flows         []reportFlow
	Protocols     []ProtocolStat
	Risk          analysis.RiskLevel
	RiskClass     string
	RiskText      string
}

var riskText = map[analysis.RiskLevel]string{
	analysis.RiskHigh:     "Several suspicious flows and background activity were detected. Review the applications involved and their network permissions.",
	analysis.RiskModerate: "A few suspicious flows were identified. Checking the applications running in the background is advised.",
	analysis.RiskLow:      "No major suspicious flow was detected. The analyzed traffic looks legitimate overall.",
}

func buildReportData(res *analysis.Result, capture string) reportData {
	data := reportData{
		Generated:     time.Now().Format(time.RFC1123),
		Capture:       capture,
		Packets:       res.PacketCount,
		EventCount:    len(res.Events),
		FlowCount:     len(res.BackgroundFlows),
		DNSCount:      len(res.DNSObservations),
		Conversations: len(res.Conversations),
		Protocols:     limit(SortProtocols(res.ProtocolStats), maxReportProtocols),
		Risk:          analysis.AssessRisk(res),
	}
	data.RiskClass = strings.ToLower(string(data.Risk))
	data.RiskText = riskText[data.Risk]

	for _, ev := range limit(res.Events, maxReportEvents) {
		data.Events = append(data.Events, reportEvent{
			Time:     formatTimestamp(ev.Timestamp),
			Type:     ev.Category,
			Detail:   ev.Detail,
			Severity: ev.Severity.String(),
			Class:    strings.ToLower(ev.Severity.String()),
		})
	}
	data.HiddenEvents = len(res.Events) - len(data.Events)

	for _, f := range limit(SortFlowsByPackets(res.BackgroundFlows), maxReportFlows) {
		data.Flows = append(data.Flows, reportFlow{
			Conversation: f.Key.String(),
			Packets:      f.PacketCount,
			Bytes:        f.ByteCount,
			Duration:     f.DurationSeconds,
			Throughput:   f.ThroughputBytesPerSecond,
		})
	}
	return data
}

// WriteHTML renders the HTML report.
func WriteHTML(w io.Writer, res *analysis.Result, capture string) error {
	if err := reportTemplate.Execute(w, buildReportData(res, capture)); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

func formatTimestamp(ts float64) string {
	if ts == 0 {
		return "-"
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).Format("15:04:05")
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"comma": humanize.Comma,
	"bytes": func(n int64) string {
		if n < 0 {
			return "0 B"
		}
		return humanize.IBytes(uint64(n))
	},
	"rate": func(f float64) string { return humanize.CommafWithDigits(f, 2) },
	"pct":  func(f float64) string { return fmt.Sprintf("%.1f", f) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Suspicious Traffic Report - {{.Capture}}</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; background: #f4f6f8; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 20px; background: #fff; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .stat-grid { display: flex; gap: 15px; margin-bottom: 20px; }
        .stat-card { flex: 1; background: #eef; padding: 15px; border-radius: 5px; text-align: center; }
        .stat-card h3 { margin: 0; font-size: 2em; }
        .badge { padding: 3px 8px; border-radius: 3px; color: #fff; font-weight: bold; }
        .critical { background: #8e1b1b; }
        .high { background: #d9534f; }
        .medium, .moderate { background: #f0ad4e; }
        .low { background: #5cb85c; }
        .alert { background: #fff3cd; border-left: 4px solid #f0ad4e; padding: 10px; margin-bottom: 10px; }
        .bar { background: #7D56F4; color: #fff; padding: 2px 6px; border-radius: 3px; min-width: 2em; }
        .ok { color: #5cb85c; font-size: 1.2em; }
        .footer { margin-top: 30px; color: #777; font-size: 0.9em; }
    </style>
</head>
<body>
    <h1>Suspicious Traffic Report</h1>
    <p>Generated {{.Generated}}</p>

    <h2>Global Statistics</h2>
    <div class="stat-grid">
        <div class="stat-card"><h3>{{comma .Packets}}</h3><p>Packets</p></div>
        <div class="stat-card"><h3>{{.EventCount}}</h3><p>Suspicious Events</p></div>
        <div class="stat-card"><h3>{{.FlowCount}}</h3><p>Background Flows</p></div>
        <div class="stat-card"><h3>{{.DNSCount}}</h3><p>DNS Queries</p></div>
        <div class="stat-card"><h3>{{.Conversations}}</h3><p>IP Conversations</p></div>
    </div>

    <h2>Suspicious Events</h2>
{{- if .Events}}
    <table>
        <thead><tr><th>Time</th><th>Type</th><th>Detail</th><th>Severity</th></tr></thead>
        <tbody>
{{- range .Events}}
            <tr><td>{{.Time}}</td><td><strong>{{.Type}}</strong></td><td>{{.Detail}}</td><td><span class="badge {{.Class}}">{{.Severity}}</span></td></tr>
{{- end}}
        </tbody>
    </table>
{{- if .HiddenEvents}}
    <p>{{.HiddenEvents}} more events not shown.</p>
{{- end}}
{{- else}}
    <p class="ok">No suspicious flow detected.</p>
{{- end}}

    <h2>Persistent Background Flows</h2>
    <div class="alert"><strong>Warning:</strong> these flows keep communicating while the application is expected to be idle.</div>
{{- if .Flows}}
    <table>
        <thead><tr><th>Conversation</th><th>Packets</th><th>Data</th><th>Duration (s)</th><th>Throughput (bytes/s)</th></tr></thead>
        <tbody>
{{- range .Flows}}
            <tr><td><code>{{.Conversation}}</code></td><td>{{comma .Packets}}</td><td>{{bytes .Bytes}}</td><td>{{.Duration}}</td><td>{{rate .Throughput}}</td></tr>
{{- end}}
        </tbody>
    </table>
{{- else}}
    <p class="ok">No abnormal persistent flow detected.</p>
{{- end}}

    <h2>Protocol Distribution</h2>
{{- range .Protocols}}
    <div>
        <p><strong>{{.Protocol}}</strong> - {{comma .Count}} packets ({{pct .Percent}}%)</p>
        <div class="bar" style="width: {{pct .Percent}}%">{{comma .Count}}</div>
    </div>
{{- else}}
    <p>No protocol information.</p>
{{- end}}

    <h2>Conclusion</h2>
    <p><span class="badge {{.RiskClass}}">Risk level: {{.Risk}}</span></p>
    <p>{{.RiskText}}</p>

    <div class="footer">Analyzed file: {{.Capture}}</div>
</body>
</html>
`))
