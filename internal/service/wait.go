package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mattjoyce/dagspec/internal/model"
)

var errNotFinished = errors.New("workflow not finished")

// WaitOptions tunes WaitForCompletion polling.
type WaitOptions struct {
	Interval    time.Duration
	MaxInterval time.Duration
	// OnPoll, if set, sees every fetched state.
	OnPoll func(*model.Workflow)
}

// WaitForCompletion polls the workflow until it reaches a terminal phase,
// backing off exponentially between polls. Transport errors are retried;
// a missing workflow is not.
func (c *Client) WaitForCompletion(ctx context.Context, namespace, name string, opts WaitOptions) (*model.Workflow, error) {
	b := backoff.NewExponentialBackOff()
	if opts.Interval > 0 {
		b.InitialInterval = opts.Interval
	}
	if opts.MaxInterval > 0 {
		b.MaxInterval = opts.MaxInterval
	}
	b.MaxElapsedTime = 0

	var last *model.Workflow
	op := func() error {
		wf, err := c.Get(ctx, namespace, name)
		if err != nil {
			if IsNotFound(err) {
				return backoff.Permanent(err)
			}
			c.logger.Warn("poll failed", "workflow", name, "namespace", namespace, "error", err)
			return err
		}
		last = wf
		if opts.OnPoll != nil {
			opts.OnPoll(wf)
		}
		if wf.Status == nil || !wf.Status.Phase.Completed() {
			return errNotFinished
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return last, err
	}
	c.logger.Info("workflow finished", "workflow", name, "namespace", namespace, "phase", last.Status.Phase)
	return last, nil
}
