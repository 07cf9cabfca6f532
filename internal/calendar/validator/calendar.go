package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"roomgrid/pkg/logger"
	"roomgrid/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// CalendarValidator checks dataset records on ingest. Failures are
// reported to the caller, which skips the record with a warning; a bad
// record never aborts a load.
type CalendarValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCalendarValidator(log *logger.Logger) *CalendarValidator {
	v := validator.New()

	if err := v.RegisterValidation("nominal_room_id", validateNominalRoomID); err != nil {
		log.Fatal("Failed to register 'nominal_room_id' validator",
			"error", err,
		)
	}

	log.Info("Calendar validator initialized successfully")

	return &CalendarValidator{
		validate: v,
		logger:   log,
	}
}

// validateNominalRoomID rejects composite extra-row ids on ingest; the
// engine synthesizes those itself.
func validateNominalRoomID(fl validator.FieldLevel) bool {
	id, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return !strings.Contains(id, model.ExtraRoomSep)
}

func (v *CalendarValidator) ValidateRoom(room *model.Room) error {
	if room == nil {
		return ValidationErrors{{Field: "room", Message: "is nil"}}
	}
	return v.check(room)
}

func (v *CalendarValidator) ValidateReservation(res *model.Reservation) error {
	if res == nil {
		return ValidationErrors{{Field: "reservation", Message: "is nil"}}
	}
	if !res.EndDate.After(res.StartDate) {
		return ValidationErrors{{Field: "EndDate", Message: "must be after StartDate"}}
	}
	return v.check(res)
}

func (v *CalendarValidator) ValidatePriceRecord(rec *model.PriceRecord) error {
	return v.check(rec)
}

func (v *CalendarValidator) ValidateRestrictionRecord(rec *model.RestrictionRecord) error {
	return v.check(rec)
}

func (v *CalendarValidator) ValidateAvailabilityRecord(rec *model.AvailabilityRecord) error {
	return v.check(rec)
}

func (v *CalendarValidator) check(value any) error {
	if err := v.validate.Struct(value); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *CalendarValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var translated ValidationErrors
	for _, err := range errs {
		translated = append(translated, ValidationError{
			Field:   err.Field(),
			Message: translateTag(err),
		})
	}
	return translated
}

func translateTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gtfield":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", err.Param())
	case "datetime":
		return fmt.Sprintf("must match format %s", err.Param())
	case "nominal_room_id":
		return "must not be a composite extra-row id"
	default:
		return fmt.Sprintf("failed validation for '%s'", err.Tag())
	}
}
