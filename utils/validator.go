package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
)

// Minimal internal validator to avoid external dependency. Supports:
// - required
// - email (basic address shape)
// - pwdmin (min length 6)

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		fv := v.Field(i)

		// Recurse into nested structs so embedded payloads get checked too.
		if fv.Kind() == reflect.Struct {
			if err := ValidateStruct(fv.Interface()); err != nil {
				return err
			}
			continue
		}

		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range strings.Split(tag, ",") {
			p = strings.TrimSpace(p)
			switch p {
			case "required":
				if fv.Kind() == reflect.String && sval == "" {
					return errors.New(field.Name + " is required")
				}
				if fv.Kind() == reflect.Float64 && fv.Float() == 0 {
					return errors.New(field.Name + " is required")
				}
			case "email":
				if sval != "" && !reEmail.MatchString(sval) {
					return errors.New(field.Name + " must be a valid email address")
				}
			case "pwdmin":
				if len(sval) < 6 {
					return errors.New(field.Name + " must be at least 6 characters")
				}
			}
		}
	}
	return nil
}
