package attendance

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"qrattend/internal/apperr"
)

const (
	MinRollNoLen = 2
	MaxRollNoLen = 32
	MinNameLen   = 2
	MaxNameLen   = 100
)

// Roll numbers double as artifact file names.
var rollNoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

type registerInput struct {
	RollNo string `validate:"required,min=2,max=32,rollno"`
	Name   string `validate:"required,min=2,max=100"`
}

type scanInput struct {
	RollNo      string `validate:"required"`
	SubjectCode string `validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("rollno", func(fl validator.FieldLevel) bool {
		return rollNoPattern.MatchString(fl.Field().String())
	})
	return v
}

var fieldNames = map[string]string{
	"RollNo":      "roll number",
	"Name":        "name",
	"SubjectCode": "subject code",
}

var fieldCodes = map[string]string{
	"RollNo":      "ROLL_NO",
	"Name":        "NAME",
	"SubjectCode": "SUBJECT_CODE",
}

// validationError turns the first validator failure into an apperr with a
// message fit for the caller.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("INVALID_INPUT", "invalid input")
	}
	fe := verrs[0]
	field := fieldNames[fe.Field()]
	code := fieldCodes[fe.Field()]
	switch fe.Tag() {
	case "required":
		return apperr.Validation("MISSING_"+code, "%s is required", field)
	case "min":
		return apperr.Validation(code+"_TOO_SHORT", "%s must be at least %s characters", field, fe.Param())
	case "max":
		return apperr.Validation(code+"_TOO_LONG", "%s must be at most %s characters", field, fe.Param())
	case "rollno":
		return apperr.Validation("INVALID_ROLL_NO", "%s may only contain letters, digits, '.', '_' and '-'", field)
	default:
		return apperr.Validation("INVALID_"+code, "%s is invalid", field)
	}
}

func clean(s string) string { return strings.TrimSpace(s) }
