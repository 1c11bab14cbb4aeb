package config

import (
	"fmt"
	"os"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/analysis"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for an analysis run.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Decoder  DecoderConfig  `yaml:"decoder"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AnalysisConfig holds detection thresholds and indicator lists.
type AnalysisConfig struct {
	BackgroundMinPackets  int      `yaml:"background_min_packets"`
	BackgroundMinDuration float64  `yaml:"background_min_duration"` // seconds
	DNSFrequencyThreshold int      `yaml:"dns_frequency_threshold"`
	MaliciousPorts        []int    `yaml:"malicious_ports"`
	SuspiciousTLDs        []string `yaml:"suspicious_tlds"`
	SuspiciousKeywords    []string `yaml:"suspicious_keywords"`
	QUICPort              string   `yaml:"quic_port"`
	ProgressEvery         int      `yaml:"progress_every"`
}

// DecoderConfig selects and configures the packet decoder.
type DecoderConfig struct {
	Type       string `yaml:"type"`        // gopacket|tshark
	BPFFilter  string `yaml:"bpf_filter"`  // gopacket only
	TsharkPath string `yaml:"tshark_path"` // tshark only
}

// OutputConfig controls which renderers run after the analysis.
type OutputConfig struct {
	HTMLReport  string `yaml:"html_report"`
	JSONExport  string `yaml:"json_export"`
	MetricsFile string `yaml:"metrics_file"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

const (
	DecoderGopacket = "gopacket"
	DecoderTshark   = "tshark"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	d := analysis.DefaultConfig()
	return &Config{
		Analysis: AnalysisConfig{
			BackgroundMinPackets:  d.BackgroundMinPackets,
			BackgroundMinDuration: d.BackgroundMinDuration,
			DNSFrequencyThreshold: d.DNSFrequencyThreshold,
			MaliciousPorts:        d.MaliciousPorts,
			SuspiciousTLDs:        d.SuspiciousTLDs,
			SuspiciousKeywords:    d.SuspiciousKeywords,
			QUICPort:              d.QUICPort,
			ProgressEvery:         d.ProgressEvery,
		},
		Decoder: DecoderConfig{
			Type:       DecoderGopacket,
			TsharkPath: "tshark",
		},
		Output: OutputConfig{
			HTMLReport: "rapport_analyse.html",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv applies environment variable overrides.
func (c *Config) ApplyEnv() {
	if level := os.Getenv("TRAFFICSUSPECT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if path := os.Getenv("TRAFFICSUSPECT_TSHARK"); path != "" {
		c.Decoder.TsharkPath = path
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.BackgroundMinPackets < 0 || a.BackgroundMinDuration < 0 || a.DNSFrequencyThreshold < 0 || a.ProgressEvery < 0 {
		return fmt.Errorf("invalid analysis config: thresholds must not be negative")
	}
	for _, p := range a.MaliciousPorts {
		if p < 0 || p > 65535 {
			return fmt.Errorf("invalid analysis config: port %d out of range", p)
		}
	}
	switch c.Decoder.Type {
	case DecoderGopacket, DecoderTshark:
	default:
		return fmt.Errorf("invalid decoder type %q (want %s or %s)", c.Decoder.Type, DecoderGopacket, DecoderTshark)
	}
	return nil
}

// EngineConfig converts the analysis section for the engine.
func (c *Config) EngineConfig() analysis.Config {
	a := c.Analysis
	return analysis.Config{
		BackgroundMinPackets:  a.BackgroundMinPackets,
		BackgroundMinDuration: a.BackgroundMinDuration,
		DNSFrequencyThreshold: a.DNSFrequencyThreshold,
		MaliciousPorts:        a.MaliciousPorts,
		SuspiciousTLDs:        a.SuspiciousTLDs,
		SuspiciousKeywords:    a.SuspiciousKeywords,
		QUICPort:              a.QUICPort,
		ProgressEvery:         a.ProgressEvery,
	}
}
