package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/capture"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/config"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/logging"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/metrics"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/reporting"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/tshark"
	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var analyzeOpts struct {
	configPath  string
	decoder     string
	report      string
	jsonExport  string
	metricsFile string
	logLevel    string
	browse      bool
}

var rootCmd = &cobra.Command{
	Use:           "trafficsuspect",
	Short:         "Offline suspicious traffic analysis of packet captures",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <capture.pcap>",
	Short: "Analyze a capture and write the reports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args[0])
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "trafficsuspect", version)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOpts.configPath, "config", "c", "", "YAML configuration file")
	f.StringVar(&analyzeOpts.decoder, "decoder", "", "packet decoder: gopacket or tshark")
	f.StringVar(&analyzeOpts.report, "report", "", "HTML report path (default rapport_analyse.html)")
	f.StringVar(&analyzeOpts.jsonExport, "json", "", "write a JSON export to this path")
	f.StringVar(&analyzeOpts.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	f.StringVar(&analyzeOpts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolVar(&analyzeOpts.browse, "tui", false, "browse the results interactively")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if analyzeOpts.configPath != "" {
		loaded, err := config.Load(analyzeOpts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
		cfg.ApplyEnv()
	}

	flags := cmd.Flags()
	if flags.Changed("decoder") {
		cfg.Decoder.Type = analyzeOpts.decoder
	}
	if flags.Changed("report") {
		cfg.Output.HTMLReport = analyzeOpts.report
	}
	if flags.Changed("json") {
		cfg.Output.JSONExport = analyzeOpts.jsonExport
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = analyzeOpts.metricsFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = analyzeOpts.logLevel
	}
	return cfg, cfg.Validate()
}

// openSource opens the configured decoder. The returned func releases it.
func openSource(ctx context.Context, cfg *config.Config, path string) (analysis.PacketSource, func(), error) {
	switch cfg.Decoder.Type {
	case config.DecoderTshark:
		r, err := tshark.Open(ctx, cfg.Decoder.TsharkPath, path)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	default:
		r, err := capture.Open(path, cfg.Decoder.BPFFilter)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	}
}

func runAnalyze(cmd *cobra.Command, path string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, release, err := openSource(ctx, cfg, path)
	if err != nil {
		return err
	}
	defer release()

	logger.Info("Analyzing capture",
		zap.String("file", path),
		zap.String("decoder", cfg.Decoder.Type))

	res, err := analysis.NewEngine(cfg.EngineConfig(), analysis.WithLogger(logger)).Run(ctx, src)
	if err != nil {
		return err
	}

	captureName := filepath.Base(path)
	if out := cfg.Output.HTMLReport; out != "" {
		if err := reporting.GenerateReport(res, captureName, out, "html"); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		logger.Info("HTML report written", zap.String("path", out))
	}
	if out := cfg.Output.JSONExport; out != "" {
		if err := reporting.GenerateReport(res, captureName, out, "json"); err != nil {
			return fmt.Errorf("failed to write JSON export: %w", err)
		}
		logger.Info("JSON export written", zap.String("path", out))
	}
	if out := cfg.Output.MetricsFile; out != "" {
		if err := metrics.WriteTextfile(out, res, captureName); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		logger.Info("Metrics written", zap.String("path", out))
	}

	if analyzeOpts.browse {
		p := tea.NewProgram(tui.NewResultsModel(res, captureName), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(res, captureName))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
