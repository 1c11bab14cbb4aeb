package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/reporting"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const summaryTop = 5

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	riskStyles = map[analysis.RiskLevel]lipgloss.Style{
		analysis.RiskHigh:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F")),
		analysis.RiskModerate: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFAF00")),
		analysis.RiskLow:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FD787")),
	}
)

func (m ResultsModel) View() string {
	title := titleStyle.Render(fmt.Sprintf("Suspicious Traffic Analysis - %s", m.capture))

	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%s (%d)", name, len(m.tables[i].Rows()))
		if tab(i) == m.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		infoStyle.Render(totalsText(m.result, m.risk)),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		infoStyle.Render(m.tables[m.active].View()),
	)
	return body + "\n" + helpStyle.Render("tab/shift+tab: switch view • ↑/↓: scroll • q: quit")
}

// RenderSummary renders the console summary printed after an analysis.
func RenderSummary(res *analysis.Result, capture string) string {
	risk := analysis.AssessRisk(res)
	title := titleStyle.Render(fmt.Sprintf("Suspicious Traffic Analysis - %s", capture))

	var flows []string
	for _, f := range limit(reporting.SortFlowsByPackets(res.BackgroundFlows), summaryTop) {
		flows = append(flows, fmt.Sprintf("%s  %s packets, %s, %.2fs",
			f.Key.String(), humanize.Comma(f.PacketCount), formatBytes(f.ByteCount), f.DurationSeconds))
	}
	if len(flows) == 0 {
		flows = append(flows, "None")
	}

	var protos []string
	for _, p := range limit(reporting.SortProtocols(res.ProtocolStats), summaryTop) {
		protos = append(protos, fmt.Sprintf("%s: %s (%.1f%%)", p.Protocol, humanize.Comma(p.Count), p.Percent))
	}
	if len(protos) == 0 {
		protos = append(protos, "None")
	}

	flowBox := infoStyle.Render("Top background flows\n" + strings.Join(flows, "\n"))
	protoBox := infoStyle.Render("Protocols\n" + strings.Join(protos, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		infoStyle.Render(totalsText(res, risk)),
		lipgloss.JoinHorizontal(lipgloss.Top, flowBox, protoBox),
	) + "\n"
}

func totalsText(res *analysis.Result, risk analysis.RiskLevel) string {
	style, ok := riskStyles[risk]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return fmt.Sprintf("Packets analyzed: %s\nSuspicious events: %d\nBackground flows: %d\nDNS queries: %d\nConversations: %d\nRisk level: %s",
		humanize.Comma(res.PacketCount),
		len(res.Events),
		len(res.BackgroundFlows),
		len(res.DNSObservations),
		len(res.Conversations),
		style.Render(string(risk)))
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func formatClock(ts float64) string {
	if ts == 0 {
		return "-"
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).Format("15:04:05")
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
