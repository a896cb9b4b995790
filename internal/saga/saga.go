// Package saga runs a sequence of steps that span more than one store. When a
// step fails, the compensations of the steps that already completed run in
// reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Step is one unit of work. Compensate undoes Action and may be nil when there
// is nothing to undo.
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga is built once and executed once.
type Saga struct {
	name  string
	steps []Step
}

// StepError reports the step that failed. Compensation failures, if any, are
// joined into Err.
type StepError struct {
	Saga string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("saga %s: step %s: %v", e.Saga, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func New(name string) *Saga {
	return &Saga{name: name}
}

// AddStep appends a step and returns the saga for chaining.
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the steps in order. Compensations run with a context that is not
// cancelled together with ctx, so a cancelled request still gets cleaned up.
func (s *Saga) Execute(ctx context.Context) error {
	for i, step := range s.steps {
		logger := log.WithFields(log.Fields{"saga": s.name, "step": step.Name})
		logger.Debug("Executing saga step")

		err := step.Action(ctx)
		if err == nil {
			continue
		}

		logger.WithError(err).Warn("Saga step failed, compensating")
		compensationErr := s.compensate(context.WithoutCancel(ctx), i)
		return &StepError{Saga: s.name, Step: step.Name, Err: errors.Join(err, compensationErr)}
	}

	return nil
}

// compensate undoes the steps before failed, last first. Every compensation is
// attempted even if an earlier one fails.
func (s *Saga) compensate(ctx context.Context, failed int) error {
	var errs []error
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}

		if err := step.Compensate(ctx); err != nil {
			log.WithFields(log.Fields{"saga": s.name, "step": step.Name}).WithError(err).Error("Saga compensation failed")
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}
