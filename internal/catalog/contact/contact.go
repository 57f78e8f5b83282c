package contact

import (
	"html"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/tair/furniture-storefront/internal/catalog/domain"
)

// Field limits
const (
	MaxNameLength    = 100
	MaxSubjectLength = 200
	MaxPhoneLength   = 30
	MinMessageLength = 10
	MaxMessageLength = 5000
)

// Form is the contact form as posted by the browser
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

var policy = bluemonday.StrictPolicy()

// Sanitize strips markup from every field and trims whitespace
func (f Form) Sanitize() Form {
	clean := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
	}
	return Form{
		Name:    clean(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   clean(f.Phone),
		Company: clean(f.Company),
		Subject: clean(f.Subject),
		Message: clean(f.Message),
	}
}

// Validate returns the field errors of f, or nil when it can be submitted
func (f Form) Validate() domain.FieldErrors {
	errs := domain.FieldErrors{}

	switch {
	case f.Name == "":
		errs["name"] = "Name is required"
	case utf8.RuneCountInString(f.Name) > MaxNameLength:
		errs["name"] = "Name is too long"
	}

	if f.Email == "" {
		errs["email"] = "Email is required"
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		errs["email"] = "Email is invalid"
	}

	if utf8.RuneCountInString(f.Phone) > MaxPhoneLength {
		errs["phone"] = "Phone is too long"
	}
	if utf8.RuneCountInString(f.Subject) > MaxSubjectLength {
		errs["subject"] = "Subject is too long"
	}

	switch n := utf8.RuneCountInString(f.Message); {
	case n == 0:
		errs["message"] = "Message is required"
	case n < MinMessageLength:
		errs["message"] = "Message is too short"
	case n > MaxMessageLength:
		errs["message"] = "Message is too long"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Prepare sanitizes and validates f. The submission is only meaningful when
// the returned errors are nil.
func Prepare(f Form) (domain.ContactSubmission, domain.FieldErrors) {
	clean := f.Sanitize()
	if errs := clean.Validate(); errs != nil {
		return domain.ContactSubmission{}, errs
	}
	return domain.ContactSubmission{
		Name:    clean.Name,
		Email:   clean.Email,
		Phone:   clean.Phone,
		Company: clean.Company,
		Subject: clean.Subject,
		Message: clean.Message,
	}, nil
}
