package tui

import (
	"fmt"
	"strings"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/reporting"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type tab int

const (
	tabEvents tab = iota
	tabFlows
	tabProtocols
	tabDNS
)

var tabNames = []string{"Events", "Background Flows", "Protocols", "DNS Queries"}

// ResultsModel browses a finished analysis result.
type ResultsModel struct {
	result  *analysis.Result
	capture string
	risk    analysis.RiskLevel

	active tab
	tables []table.Model
}

func NewResultsModel(res *analysis.Result, capture string) ResultsModel {
	m := ResultsModel{
		result:  res,
		capture: capture,
		risk:    analysis.AssessRisk(res),
	}

	m.tables = []table.Model{
		newTable([]table.Column{
			{Title: "Time", Width: 10},
			{Title: "Type", Width: 20},
			{Title: "Severity", Width: 9},
			{Title: "Detail", Width: 60},
		}, eventRows(res)),
		newTable([]table.Column{
			{Title: "Conversation", Width: 36},
			{Title: "Packets", Width: 10},
			{Title: "Data", Width: 10},
			{Title: "Duration (s)", Width: 12},
			{Title: "Bytes/s", Width: 12},
		}, flowRows(res)),
		newTable([]table.Column{
			{Title: "Protocol", Width: 16},
			{Title: "Packets", Width: 12},
			{Title: "Share", Width: 8},
		}, protocolRows(res)),
		newTable([]table.Column{
			{Title: "Time", Width: 10},
			{Title: "Source", Width: 20},
			{Title: "Domain", Width: 50},
		}, dnsRows(res)),
	}
	m.tables[m.active].Focus()
	return m
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func eventRows(res *analysis.Result) []table.Row {
	rows := make([]table.Row, 0, len(res.Events))
	for _, ev := range res.Events {
		rows = append(rows, table.Row{
			formatClock(ev.Timestamp),
			string(ev.Category),
			ev.Severity.String(),
			ev.Detail,
		})
	}
	return rows
}

func flowRows(res *analysis.Result) []table.Row {
	flows := reporting.SortFlowsByPackets(res.BackgroundFlows)
	rows := make([]table.Row, 0, len(flows))
	for _, f := range flows {
		rows = append(rows, table.Row{
			f.Key.String(),
			humanize.Comma(f.PacketCount),
			formatBytes(f.ByteCount),
			fmt.Sprintf("%.2f", f.DurationSeconds),
			humanize.CommafWithDigits(f.ThroughputBytesPerSecond, 2),
		})
	}
	return rows
}

func protocolRows(res *analysis.Result) []table.Row {
	stats := reporting.SortProtocols(res.ProtocolStats)
	rows := make([]table.Row, 0, len(stats))
	for _, p := range stats {
		rows = append(rows, table.Row{p.Protocol, humanize.Comma(p.Count), fmt.Sprintf("%.1f%%", p.Percent)})
	}
	return rows
}

func dnsRows(res *analysis.Result) []table.Row {
	rows := make([]table.Row, 0, len(res.DNSObservations))
	for _, q := range res.DNSObservations {
		rows = append(rows, table.Row{formatClock(q.Timestamp), q.SourceIP, strings.TrimSpace(q.Domain)})
	}
	return rows
}

func (m ResultsModel) Init() tea.Cmd {
	return nil
}
