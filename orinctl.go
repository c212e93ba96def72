// Package orinctl is the control core of an embedded controller that
// manages an NVIDIA Jetson Orin companion board through four discrete
// strap signal lines (RESET, REC, PWR, APO).
//
// Operator commands arriving over a USB CDC serial console are parsed by
// the repl package, admitted by the Scheduler, and executed by the
// Orchestrator, which drives timed strap transitions through a StrapDriver
// capability, records a ring-buffered telemetry trail, and gates recovery
// flows on Jetson UART traffic observed by the BridgeActivityMonitor.
//
// The same core serves two targets: MCU firmware (real GPIO, UART, and
// USB behind the capability interfaces) and the host-side emulator in the
// emulator package used for transcript capture and regression tests.
package orinctl

import (
	"context"
	"time"

	"github.com/NathanHowell/orinctl/internal/constants"
	"github.com/NathanHowell/orinctl/internal/logging"
)

// ControllerParams sizes and tunes a controller instance.
type ControllerParams struct {
	// QueueDepth is the scheduler→orchestrator command queue capacity.
	QueueDepth int
	// PendingDepth bounds commands held behind an active run.
	PendingDepth int
	// TelemetryCapacity is the telemetry ring size.
	TelemetryCapacity int
	// BridgeActivityTimeout bounds bridge waits during recovery.
	BridgeActivityTimeout time.Duration
	// Power is the optional rail monitor; nil disables brown-out handling.
	Power PowerMonitor
}

// DefaultControllerParams returns the standard sizing.
func DefaultControllerParams() ControllerParams {
	return ControllerParams{
		QueueDepth:            constants.CommandQueueDepth,
		PendingDepth:          constants.PendingQueueDepth,
		TelemetryCapacity:     constants.TelemetryRingCapacity,
		BridgeActivityTimeout: constants.DefaultBridgeActivityTimeout,
	}
}

// ControllerOptions carries optional collaborators.
type ControllerOptions struct {
	// Clock defaults to the host monotonic clock.
	Clock Clock
	// Logger defaults to the process logger.
	Logger *logging.Logger
	// Observer defaults to recording into the controller's Metrics.
	Observer Observer
}

// Controller assembles the full command → sequence pipeline: queue,
// scheduler, orchestrator, telemetry recorder, and bridge monitor.
type Controller struct {
	queue        *CommandQueue
	scheduler    *Scheduler
	orchestrator *Orchestrator
	recorder     *TelemetryRecorder
	monitor      *BridgeActivityMonitor
	metrics      *Metrics
}

// NewController builds a controller around the supplied strap driver. The
// full sequence catalog is registered.
func NewController(params ControllerParams, driver StrapDriver, options *ControllerOptions) (*Controller, error) {
	if options == nil {
		options = &ControllerOptions{}
	}

	clock := options.Clock
	if clock == nil {
		clock = NewSystemClock()
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.Default()
	}

	metrics := NewMetrics()
	observer := options.Observer
	if observer == nil {
		observer = NewMetricsObserver(metrics)
	}

	queue := NewCommandQueue(params.QueueDepth)
	scheduler := NewScheduler(queue)
	if err := scheduler.RegisterDefaults(); err != nil {
		return nil, err
	}

	recorder := NewTelemetryRecorder(params.TelemetryCapacity)
	monitor := NewBridgeActivityMonitor()

	orchestrator, err := NewOrchestrator(OrchestratorConfig{
		Queue:                 queue,
		Driver:                driver,
		Clock:                 clock,
		Templates:             scheduler.Templates(),
		Recorder:              recorder,
		Monitor:               monitor,
		Power:                 params.Power,
		Completion:            scheduler,
		Observer:              observer,
		Logger:                logger,
		BridgeActivityTimeout: params.BridgeActivityTimeout,
		PendingDepth:          params.PendingDepth,
	})
	if err != nil {
		return nil, err
	}

	return &Controller{
		queue:        queue,
		scheduler:    scheduler,
		orchestrator: orchestrator,
		recorder:     recorder,
		monitor:      monitor,
		metrics:      metrics,
	}, nil
}

// Scheduler returns the admission front-end consumed by the REPL executor.
func (c *Controller) Scheduler() *Scheduler {
	return c.scheduler
}

// Orchestrator returns the sequence engine.
func (c *Controller) Orchestrator() *Orchestrator {
	return c.orchestrator
}

// Recorder returns the telemetry recorder.
func (c *Controller) Recorder() *TelemetryRecorder {
	return c.recorder
}

// Monitor returns the bridge activity monitor.
func (c *Controller) Monitor() *BridgeActivityMonitor {
	return c.monitor
}

// Metrics returns the controller metrics.
func (c *Controller) Metrics() *Metrics {
	return c.metrics
}

// Serve runs the orchestrator loop until the context is cancelled.
func (c *Controller) Serve(ctx context.Context) error {
	return c.orchestrator.Run(ctx)
}
