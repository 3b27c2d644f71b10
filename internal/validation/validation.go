// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/project-hub/internal/apperror"
)

var subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Validator checks request payloads and reports the first problem as a validation error.
type Validator struct {
	validate *validator.Validate
}

// Struct validates the `validate` tags of s. Missing required fields are reported
// together, any other failure names the offending field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Internal(err, "failed to validate request")
	}

	missing := make([]string, 0)
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}

	if len(missing) > 0 {
		return apperror.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}

	return apperror.Validation("Invalid %s", verrs[0].Field())
}

func (v *Validator) Email(email string) bool {
	return v.validate.Var(email, "required,email") == nil
}

func (v *Validator) Subdomain(subdomain string) bool {
	return subdomainRegex.MatchString(subdomain)
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func NewValidator() *Validator {
	v := new(Validator)

	v.validate = validator.New(validator.WithRequiredStructEnabled())
	v.validate.RegisterTagNameFunc(jsonName)

	err := v.validate.RegisterValidation("subdomain", func(fl validator.FieldLevel) bool {
		return subdomainRegex.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register subdomain validation: %v", err))
	}

	return v
}
