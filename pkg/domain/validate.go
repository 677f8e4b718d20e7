package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a single failed form rule with a user-facing message.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type draftRule struct {
	name    string
	message string
	tag     string
	value   func(d *Draft) any
}

// draftRules are checked in order; only the first failure is reported.
var draftRules = []draftRule{
	{"title", "Project title is required", "required", func(d *Draft) any { return strings.TrimSpace(d.Title) }},
	{"slug", "Slug is required", "required", func(d *Draft) any { return strings.TrimSpace(d.Slug) }},
	{"project_type", "Project type is required", "required", func(d *Draft) any { return strings.TrimSpace(d.ProjectType) }},
	{"header_image", "Header image is required", "required", func(d *Draft) any { return d.HeaderImageURL }},
	{"categories", "At least 1 category is required", "min=1", func(d *Draft) any { return d.SelectedCategories }},
	{"descriptions", "At least 2 description paragraphs are required", "min=2", func(d *Draft) any { return d.Descriptions }},
	{"descriptions", "At least 2 description paragraphs are required", "min=2", func(d *Draft) any { return d.NonEmptyDescriptions() }},
	{"images", "At least 2 screenshots are required", "min=2", func(d *Draft) any { return d.Images }},
}

// Validate checks the draft against the submit rules and returns the
// first violated one as a *ValidationError.
func (d *Draft) Validate() error {
	for _, r := range draftRules {
		if err := validate.Var(r.value(d), r.tag); err != nil {
			return &ValidationError{Rule: r.name, Message: r.message}
		}
	}
	return nil
}

// ValidateCredentials checks a login form before it is sent.
func ValidateCredentials(email, password string) error {
	if err := validate.Var(strings.TrimSpace(email), "required"); err != nil {
		return &ValidationError{Rule: "email", Message: "Email is required"}
	}
	if err := validate.Var(strings.TrimSpace(email), "email"); err != nil {
		return &ValidationError{Rule: "email", Message: "Enter a valid email address"}
	}
	if err := validate.Var(password, "required"); err != nil {
		return &ValidationError{Rule: "password", Message: "Password is required"}
	}
	return nil
}

// ValidateCategoryName checks the category form.
func ValidateCategoryName(name string) error {
	if err := validate.Var(strings.TrimSpace(name), "required,max=100"); err != nil {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Rule: "name", Message: "Category name is required"}
		}
		return &ValidationError{Rule: "name", Message: fmt.Sprintf("Category name is too long (%d/100)", len([]rune(strings.TrimSpace(name))))}
	}
	return nil
}
