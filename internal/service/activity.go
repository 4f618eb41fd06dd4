package service

import (
	"context"

	"adeelasgher847/attendance-agent/internal/events"

	"go.uber.org/zap"
)

// activity bundles the optional journal and hub every service reports to
type activity struct {
	journal Recorder
	hub     *events.Hub
	logger  *zap.Logger
}

func (a activity) record(ctx context.Context, kind, message string, attrs map[string]string) {
	if a.journal == nil {
		return
	}
	// The action already happened remotely; a journal failure must not undo it
	if err := a.journal.Record(context.WithoutCancel(ctx), kind, message, attrs); err != nil {
		a.logger.Warn("Failed to write journal entry", zap.Error(err), zap.String("kind", kind))
	}
}

func (a activity) publish(topic string, data interface{}) {
	if a.hub == nil {
		return
	}
	a.hub.Publish(topic, data)
}
