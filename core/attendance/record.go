package attendance

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/eduflexsms/eduflex/core"
)

const (
	MonthsPerYear = 12
	WeeksPerMonth = 5
)

// RecordType is a monthly, non-attendance status.
type RecordType string

const (
	RecordFee  RecordType = "fee"
	RecordTute RecordType = "tute"
)

var (
	RecordTypes = []RecordType{RecordFee, RecordTute}

	ErrUnknownRecordType = errors.New("unknown record type")

	wireStatusTag  = "wirestatus"
	wireStatusText = "{0} must be one of present, absent or pending"

	recordTypeTag  = "recordtype"
	recordTypeText = "{0} must be one of fee or tute"
)

// ParseRecordType parses a record type, case-insensitively.
func ParseRecordType(s string) (RecordType, error) {
	rt := RecordType(core.CleanString(s, true /* lower */))
	switch rt {
	case RecordFee, RecordTute:
		return rt, nil
	}
	return "", errors.Wrapf(ErrUnknownRecordType, "%q", s)
}

// Slot addresses one weekly attendance cell.
type Slot struct {
	StudentID string
	Subject   string
	Month     int // 0-11
	Week      int // 0-4
}

func (sl Slot) Validate() error {
	var flds []core.FieldError
	flds = appendIdentityErrors(flds, sl.StudentID, sl.Subject)
	flds = appendMonthError(flds, sl.Month)
	if sl.Week < 0 || sl.Week >= WeeksPerMonth {
		flds = append(flds, core.FieldError{Field: "week", Error: fmt.Sprintf("week must be between 0 and %d", WeeksPerMonth-1)})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (sl Slot) String() string {
	return fmt.Sprintf("%s/%s/%d/%d", sl.StudentID, sl.Subject, sl.Month, sl.Week)
}

// RecordRef addresses one monthly fee or tute cell.
type RecordRef struct {
	StudentID string
	Subject   string
	Month     int // 0-11
	Type      RecordType
}

func (ref RecordRef) Validate() error {
	var flds []core.FieldError
	flds = appendIdentityErrors(flds, ref.StudentID, ref.Subject)
	flds = appendMonthError(flds, ref.Month)
	if _, err := ParseRecordType(string(ref.Type)); err != nil {
		flds = append(flds, core.FieldError{Field: "type", Error: "type must be one of fee or tute"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (ref RecordRef) String() string {
	return fmt.Sprintf("%s/%s/%d/%s", ref.StudentID, ref.Subject, ref.Month, ref.Type)
}

func appendIdentityErrors(flds []core.FieldError, studentID, subject string) []core.FieldError {
	if strings.TrimSpace(studentID) == "" {
		flds = append(flds, core.FieldError{Field: "student_id", Error: "this field is required"})
	}
	if strings.TrimSpace(subject) == "" {
		flds = append(flds, core.FieldError{Field: "subject", Error: "this field is required"})
	}
	return flds
}

func appendMonthError(flds []core.FieldError, month int) []core.FieldError {
	if month < 0 || month >= MonthsPerYear {
		flds = append(flds, core.FieldError{Field: "month", Error: fmt.Sprintf("month must be between 0 and %d", MonthsPerYear-1)})
	}
	return flds
}

// InitValidators registers the `wirestatus` and `recordtype` tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(wireStatusTag, func(fl validator.FieldLevel) bool {
		return IsWireValue(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, wireStatusTag, wireStatusText)

	_ = validate.RegisterValidation(recordTypeTag, func(fl validator.FieldLevel) bool {
		_, err := ParseRecordType(fl.Field().String())
		return err == nil
	})
	core.RegisterCustomTranslation(validate, translator, recordTypeTag, recordTypeText)
}
