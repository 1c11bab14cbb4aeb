package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/RayenHanafi/Analyseur-de-Trafic-Suspect-PCAP/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrDecode marks a fatal error reported by the packet source.
	ErrDecode = errors.New("packet decode failed")
	// ErrEngineUsed is returned when a finished engine is run again.
	ErrEngineUsed = errors.New("engine already finished")
	// ErrSourceNotFound is returned by packet sources whose capture cannot be opened.
	ErrSourceNotFound = errors.New("capture source not found")
)

// DecodeError wraps a fatal packet source error with the position of the
// packet that could not be decoded.
type DecodeError struct {
	Packet int64 // 1-based index of the failing packet
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode packet %d: %v", e.Packet, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// PacketSource yields decoded packets. Next returns io.EOF once the
// stream is exhausted; any other error aborts the analysis.
type PacketSource interface {
	Next(ctx context.Context) (models.PacketFact, error)
}

// Phase is the engine's position in its ingest → post-analyze → assemble cycle.
type Phase int

const (
	PhaseIngest Phase = iota
	PhasePostAnalyze
	PhaseAssemble
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIngest:
		return "ingest"
	case PhasePostAnalyze:
		return "post-analyze"
	case PhaseAssemble:
		return "assemble"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Engine analyzes a single capture. It owns all accumulators and must be
// discarded after Finish.
type Engine struct {
	config Config
	logger *zap.Logger
	phase  Phase

	packetCount    int64
	protocolCounts map[string]int64
	conversations  *ConversationTracker
	dnsLog         *DNSLog
	detector       *Detector
	events         []SuspiciousEvent
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for progress and phase reporting.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine with empty accumulators.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		config:         cfg,
		logger:         zap.NewNop(),
		protocolCounts: make(map[string]int64),
		conversations:  NewConversationTracker(),
		dnsLog:         NewDNSLog(),
		detector:       NewDetector(cfg),
		events:         make([]SuspiciousEvent, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Phase reports where the engine is in its lifecycle.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Run ingests every packet from src and returns the assembled result.
// A source error other than io.EOF, or a cancelled context, aborts the
// run and no result is returned.
func (e *Engine) Run(ctx context.Context, src PacketSource) (*Result, error) {
	if e.phase != PhaseIngest {
		return nil, ErrEngineUsed
	}

	for {
		if err := ctx.Err(); err != nil {
			e.abort()
			return nil, fmt.Errorf("ingest interrupted after %d packets: %w", e.packetCount, err)
		}

		pkt, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			e.abort()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("ingest interrupted after %d packets: %w", e.packetCount, err)
			}
			return nil, &DecodeError{Packet: e.packetCount + 1, Err: err}
		}
		e.Observe(pkt)
	}

	return e.Finish()
}

// Observe feeds one packet to the conversation tracker, the DNS log and
// the detector. Packets observed after ingestion has ended are dropped.
func (e *Engine) Observe(pkt models.PacketFact) {
	if e.phase != PhaseIngest {
		e.logger.Warn("packet dropped, ingestion already ended", zap.Stringer("phase", e.phase))
		return
	}

	e.packetCount++
	if proto, ok := pkt.Protocol.Get(); ok && proto != "" {
		e.protocolCounts[proto]++
	}

	e.conversations.Observe(pkt)
	e.dnsLog.Observe(pkt)
	e.events = append(e.events, e.detector.Inspect(pkt)...)

	if e.config.ProgressEvery > 0 && e.packetCount%int64(e.config.ProgressEvery) == 0 {
		e.logger.Debug("packets analyzed", zap.Int64("packets", e.packetCount))
	}
}

// Finish ends ingestion, runs the background-flow and DNS-frequency passes
// over the accumulated state and freezes the result.
func (e *Engine) Finish() (*Result, error) {
	if e.phase != PhaseIngest {
		return nil, ErrEngineUsed
	}
	e.logger.Info("ingest complete",
		zap.Int64("packets", e.packetCount),
		zap.Int("conversations", e.conversations.Len()),
		zap.Int("dns_queries", e.dnsLog.Len()),
		zap.Int("live_events", len(e.events)),
	)

	e.phase = PhasePostAnalyze
	conversations, order := e.conversations.Snapshot()
	observations := e.dnsLog.Observations()

	// The two passes read disjoint state and are joined before assembly.
	var (
		wg        sync.WaitGroup
		flows     []BackgroundFlow
		dnsEvents []SuspiciousEvent
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		flows = AnalyzeBackground(conversations, order, e.config)
	}()
	go func() {
		defer wg.Done()
		dnsEvents = AnalyzeDNSFrequency(observations, e.config)
	}()
	wg.Wait()

	e.logger.Info("post-analysis complete",
		zap.Int("background_flows", len(flows)),
		zap.Int("frequent_domains", len(dnsEvents)),
	)

	e.phase = PhaseAssemble
	events := make([]SuspiciousEvent, 0, len(e.events)+len(dnsEvents))
	events = append(events, e.events...)
	events = append(events, dnsEvents...)

	protocols := make(map[string]int64, len(e.protocolCounts))
	for k, v := range e.protocolCounts {
		protocols[k] = v
	}

	res := &Result{
		PacketCount:       e.packetCount,
		Events:            events,
		BackgroundFlows:   flows,
		DNSObservations:   observations,
		Conversations:     conversations,
		ConversationOrder: order,
		ProtocolStats:     protocols,
	}
	e.phase = PhaseDone
	return res, nil
}

func (e *Engine) abort() {
	e.phase = PhaseDone
	e.logger.Error("analysis aborted", zap.Int64("packets", e.packetCount))
}
