// Package validation registers the domain binding rules with gin's validator.
package validation

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Amounts may carry thousands separators
	AmountPattern = regexp.MustCompile(`^[0-9][0-9,]*$`)

	// Password min length
	PasswordMinLength = 6
)

var registerOnce sync.Once

// Register installs the custom tags on gin's default validator. It is safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = RegisterRules(v)
	})
	return err
}

// RegisterRules installs the custom tags on v
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"role":      validateRole,
		"jobstatus": validateJobStatus,
		"appstatus": validateApplicationStatus,
		"eventtype": validateEventType,
		"datestr":   validateDate,
		"amount":    validateAmount,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validateRole(fl validator.FieldLevel) bool {
	return models.RoleType(fl.Field().String()).Valid()
}

func validateJobStatus(fl validator.FieldLevel) bool {
	switch models.JobStatus(fl.Field().String()) {
	case models.JobStatusActive, models.JobStatusClosed, models.JobStatusDraft:
		return true
	}
	return false
}

func validateApplicationStatus(fl validator.FieldLevel) bool {
	return models.ApplicationStatus(fl.Field().String()).Valid()
}

func validateEventType(fl validator.FieldLevel) bool {
	switch models.EventType(fl.Field().String()) {
	case models.EventNetworking, models.EventWorkshop, models.EventReunion, models.EventCareer:
		return true
	}
	return false
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(helpers.DateLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateAmount(fl validator.FieldLevel) bool {
	return AmountPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}
