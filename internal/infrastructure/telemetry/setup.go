package telemetry

import (
	"context"
	"errors"

	"github.com/atelier/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Providers bundles everything started by Setup.
type Providers struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	Business *BusinessMetrics
}

// Setup starts the providers enabled in cfg. Disabled parts are no-ops, so
// the returned value is always usable.
func Setup(ctx context.Context, cfg config.TelemetryConfig, version string, logger *zap.Logger) (*Providers, error) {
	base := Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Insecure,
	}
	p := &Providers{}

	var err error
	if p.Tracer, err = NewTracerProvider(ctx, base, logger); err != nil {
		return nil, err
	}

	metricsCfg := base
	metricsCfg.Enabled = cfg.Enabled && cfg.MetricsEnabled
	if p.Meter, err = NewMeterProvider(ctx, metricsCfg, cfg.MetricsInterval, logger); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}

	logsCfg := base
	logsCfg.Enabled = cfg.Enabled && cfg.LogsEnabled
	if p.Logs, err = NewLoggerProvider(ctx, logsCfg, logger); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}

	if p.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.ProfilingAddress,
		ApplicationName: cfg.ServiceName,
	}, logger); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	if p.Profiler.IsEnabled() {
		p.Tracer.EnableSpanProfiles()
	}

	if p.Business, err = NewBusinessMetrics(p.Meter.Meter(TracerName)); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	return p, nil
}

// Shutdown flushes and stops every started provider.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Profiler != nil {
		errs = append(errs, p.Profiler.Stop())
	}
	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
