package domain

import (
	"encoding/json"
	"time"
)

// APIResponse is the envelope every backend endpoint answers with
type APIResponse[T any] struct {
	Success bool        `json:"success"`
	Data    T           `json:"data"`
	Message string      `json:"message,omitempty"`
	Errors  FieldErrors `json:"errors,omitempty"`
}

// FieldErrors maps a form field to its first error message. The backend
// sends either a string or a list of strings per field.
type FieldErrors map[string]string

func (f *FieldErrors) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(FieldErrors, len(raw))
	for field, msg := range raw {
		var one string
		if err := json.Unmarshal(msg, &one); err == nil {
			out[field] = one
			continue
		}
		var many []string
		if err := json.Unmarshal(msg, &many); err != nil {
			return err
		}
		if len(many) > 0 {
			out[field] = many[0]
		}
	}
	*f = out
	return nil
}

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	Image        string `json:"image,omitempty"`
	ProductCount int    `json:"product_count,omitempty"`
}

type ProductImage struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

type ProductFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
	Size int64  `json:"size,omitempty"`
}

type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug,omitempty"`
	Model       string         `json:"model,omitempty"`
	Description string         `json:"description,omitempty"`
	CategoryID  string         `json:"category_id,omitempty"`
	Category    string         `json:"category,omitempty"`
	Image       string         `json:"image,omitempty"`
	IsActive    bool           `json:"is_active"`
	Images      []ProductImage `json:"images,omitempty"`
	Files       []ProductFile  `json:"files,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
}

// ProductInput is the admin payload creating a product
type ProductInput struct {
	Name        string `json:"name"`
	Model       string `json:"model,omitempty"`
	Description string `json:"description,omitempty"`
	CategoryID  string `json:"category_id"`
	Image       string `json:"image,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type Solution struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type Certification struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Issuer   string `json:"issuer,omitempty"`
	Image    string `json:"image,omitempty"`
	IssuedAt string `json:"issued_at,omitempty"`
}

// ContactStatus is the triage state of a contact message
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// Valid reports whether s is a known status
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}

// ContactSubmission is a sanitized contact form
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

type ContactMessage struct {
	ID string `json:"id"`
	ContactSubmission
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type ContactStats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Read     int `json:"read"`
	Replied  int `json:"replied"`
	Archived int `json:"archived"`
}

// ContactFilter narrows the admin contact list; zero values mean no filter
type ContactFilter struct {
	Status ContactStatus
	Page   int
	Limit  int
}

type AdminUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type LoginResult struct {
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}
