package parser

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/me/mlfq/internal/config"
	"github.com/me/mlfq/internal/scheduler"
	"github.com/me/mlfq/pkg/model"
)

// Validator checks a parsed Workload against the scheduler's input contract
// and the configured size limits.
type Validator struct {
	logger *slog.Logger
	limits config.Limits
}

// NewValidator creates a Validator enforcing limits.
func NewValidator(limits config.Limits, logger *slog.Logger) *Validator {
	return &Validator{limits: limits, logger: logger.With("component", "validator")}
}

// Validate returns nil if w can be simulated, or an *model.APIError listing
// every problem found.
func (v *Validator) Validate(w *model.Workload) *model.APIError {
	var errs []model.FieldError

	errs = append(errs, v.validateLimits(w)...)
	errs = append(errs, v.validateNames(w)...)
	errs = append(errs, scheduler.CheckContract(*w)...)

	if len(errs) == 0 {
		return nil
	}
	v.logger.Debug("workload rejected", "problems", len(errs))
	return model.NewValidationError("workload validation failed", errs...)
}

func (v *Validator) validateLimits(w *model.Workload) []model.FieldError {
	var errs []model.FieldError
	if v.limits.MaxLevels > 0 && w.QueueNum > v.limits.MaxLevels {
		errs = append(errs, model.FieldError{
			Field:   "queue_num",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", v.limits.MaxLevels, w.QueueNum),
		})
	}
	if v.limits.MaxProcesses > 0 && len(w.Processes) > v.limits.MaxProcesses {
		errs = append(errs, model.FieldError{
			Field:   "process_table",
			Message: fmt.Sprintf("has %d processes, limit is %d", len(w.Processes), v.limits.MaxProcesses),
		})
	}
	return errs
}

func (v *Validator) validateNames(w *model.Workload) []model.FieldError {
	var errs []model.FieldError
	for i, p := range w.Processes {
		field := fmt.Sprintf("process_table[%d].name", i)
		if v.limits.MaxNameLength > 0 && len(p.Name) > v.limits.MaxNameLength {
			errs = append(errs, model.FieldError{
				Field:   field,
				Message: fmt.Sprintf("%q is longer than %d characters", p.Name, v.limits.MaxNameLength),
			})
		}
		if strings.ContainsFunc(p.Name, unicode.IsSpace) {
			errs = append(errs, model.FieldError{
				Field:   field,
				Message: fmt.Sprintf("%q must not contain whitespace", p.Name),
			})
		}
	}
	return errs
}
