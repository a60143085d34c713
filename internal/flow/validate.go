package flow

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so field paths match what the generator sees.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "bloomlevel", func(fl validator.FieldLevel) bool {
		return BloomLevel(fl.Field().String()).Valid()
	})
	v.RegisterStructValidation(validateMCQ, mcqWire{})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("registering validation " + tag + ": " + err.Error())
	}
}

// validateMCQ checks that the correct option index points into options.
func validateMCQ(sl validator.StructLevel) {
	q := sl.Current().Interface().(mcqWire)
	if q.CorrectOptionIndex == nil {
		return
	}
	if *q.CorrectOptionIndex >= len(q.Options) {
		sl.ReportError(q.CorrectOptionIndex, "correctOptionIndex", "CorrectOptionIndex",
			"ltlen", strconv.Itoa(len(q.Options)))
	}
}

// checkStruct validates v and returns its failures with field paths
// rooted at prefix.
func checkStruct(v any, prefix string) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: fieldPath(prefix, ""), Rule: "invalid", Param: err.Error()}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace starts with the Go type name.
		_, rest, _ := strings.Cut(fe.Namespace(), ".")
		fields = append(fields, FieldError{
			Field: fieldPath(prefix, rest),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return fields
}

func fieldPath(prefix, path string) string {
	switch {
	case prefix == "" && path == "":
		return "$"
	case prefix == "":
		return path
	case path == "":
		return prefix
	default:
		return prefix + "." + path
	}
}

// decodeStrict decodes exactly one JSON value into v, rejecting unknown
// fields and trailing data.
func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

// decodeFields converts a decodeStrict error into field failures.
func decodeFields(err error, prefix string) []FieldError {
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return []FieldError{{Field: fieldPath(prefix, strings.Trim(name, `"`)), Rule: "unknown"}}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{Field: fieldPath(prefix, typeErr.Field), Rule: "type", Param: typeErr.Value}}
	}

	return []FieldError{{Field: fieldPath(prefix, ""), Rule: "json", Param: err.Error()}}
}

// decodeOutput decodes raw strictly into v and validates it.
func decodeOutput(raw []byte, v any, prefix string) []FieldError {
	if err := decodeStrict(raw, v); err != nil {
		return decodeFields(err, prefix)
	}
	return checkStruct(v, prefix)
}
