package workflow

import (
	"fmt"

	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/value"
)

// GCStrategy is a shorthand for a VolumeClaimGC strategy.
type GCStrategy string

const (
	OnWorkflowCompletion GCStrategy = "OnWorkflowCompletion"
	OnWorkflowSuccess    GCStrategy = "OnWorkflowSuccess"
)

// NormalizeMetrics accepts a single Prometheus metric (value or pointer), a
// list of them, or Metrics (value or pointer).
func NormalizeMetrics(m any) (*model.Metrics, error) {
	switch v := m.(type) {
	case nil:
		return nil, nil
	case model.Prometheus:
		return &model.Metrics{Prometheus: []model.Prometheus{v}}, nil
	case *model.Prometheus:
		if v == nil {
			return nil, nil
		}
		return &model.Metrics{Prometheus: []model.Prometheus{*v}}, nil
	case []model.Prometheus:
		return &model.Metrics{Prometheus: append([]model.Prometheus(nil), v...)}, nil
	case model.Metrics:
		return &v, nil
	case *model.Metrics:
		return v, nil
	}
	return nil, fmt.Errorf("metrics %T: %w", m, value.ErrShape)
}

// NormalizeVolumeClaimGC accepts VolumeClaimGC (value or pointer) or a
// GCStrategy.
func NormalizeVolumeClaimGC(gc any) (*model.VolumeClaimGC, error) {
	switch v := gc.(type) {
	case nil:
		return nil, nil
	case model.VolumeClaimGC:
		return &v, nil
	case *model.VolumeClaimGC:
		return v, nil
	case GCStrategy:
		switch v {
		case OnWorkflowCompletion, OnWorkflowSuccess:
			return &model.VolumeClaimGC{Strategy: string(v)}, nil
		}
		return nil, fmt.Errorf("volume claim gc strategy %q: %w", v, value.ErrShape)
	}
	return nil, fmt.Errorf("volume claim gc %T: %w", gc, value.ErrShape)
}
