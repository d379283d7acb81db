// Package validation validates request payloads with go-playground/validator,
// reporting failures as domain validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"clubhub-backend/internal/domain"
)

// githubLogin follows GitHub's login rules: alphanumerics and single hyphens,
// no leading or trailing hyphen, at most 39 characters.
var githubLogin = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9])*$`)

const maxGitHubLoginLen = 39

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with JSON tag names and the github_username rule.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("github_username", func(fl validator.FieldLevel) bool {
		return IsGitHubUsername(fl.Field().String())
	})

	return &Validator{v: v}
}

// IsGitHubUsername reports whether s is a syntactically valid GitHub login.
func IsGitHubUsername(s string) bool {
	return len(s) <= maxGitHubLoginLen && githubLogin.MatchString(s)
}

// NormalizeGitHubUsername trims whitespace and a leading "@".
func NormalizeGitHubUsername(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

// Validate validates a struct and returns a *domain.ValidationError on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	names := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = friendlyMessage(e)
		names = append(names, e.Field())
	}
	sort.Strings(names)

	return &domain.ValidationError{Field: names[0], Message: fields[names[0]], Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "github_username":
		return "must be a valid GitHub username"
	default:
		return "is invalid"
	}
}
