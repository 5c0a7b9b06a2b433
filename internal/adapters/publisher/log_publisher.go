package publisher

import (
	"context"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/ports"

	"go.uber.org/zap"
)

// LogPublisher records snapshots in the log when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

var _ ports.SnapshotPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, s domain.ImpactSnapshot) error {
	fields := []zap.Field{
		zap.String("kind", s.Kind),
		zap.String("session_id", s.SessionID),
		zap.String("run_id", s.RunID),
		zap.Uint64("epoch", s.Epoch),
	}
	if s.Leg != "" {
		fields = append(fields, zap.String("leg", string(s.Leg)))
	}
	if s.Route != nil {
		fields = append(fields, zap.Int("legs", s.Route.Present()))
	}
	if s.Total != nil {
		fields = append(fields,
			zap.Float64("total_co2_kg", s.Total.Total.CO2Kg),
			zap.Float64("transport_km", s.Total.Transportation.TotalDistanceKm),
		)
	}

	p.logger.Info("impact snapshot", fields...)
	return nil
}
