package forms

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrSubmissionFailed wraps every forwarding failure (network or provider error).
var ErrSubmissionFailed = errors.New("forms: submission failed")

// ReviewSubmission is a guest review entered on the reviews page.
type ReviewSubmission struct {
	GuestName     string `json:"name" validate:"required,min=2,max=50"`
	Email         string `json:"email" validate:"required,email"`
	PropertySlug  string `json:"property" validate:"required,unit"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Cleanliness   int    `json:"cleanliness,omitempty" validate:"omitempty,min=1,max=5"`
	Communication int    `json:"communication,omitempty" validate:"omitempty,min=1,max=5"`
	Location      int    `json:"location,omitempty" validate:"omitempty,min=1,max=5"`
	Value         int    `json:"value,omitempty" validate:"omitempty,min=1,max=5"`
	Text          string `json:"text" validate:"required,min=50,max=500"`
	StayDate      string `json:"stayDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// NewsletterSignup is the home page signup.
type NewsletterSignup struct {
	Email string `json:"email" validate:"required,email"`
}

// FieldErrors maps a field name to the message key describing the problem.
// Keys are relative to the form's translation namespace.
type FieldErrors map[string]string

// Has reports whether field failed.
func (f FieldErrors) Has(field string) bool {
	_, ok := f[field]
	return ok
}

var reviewErrorKeys = map[string]string{
	"name":          "errors.name",
	"email":         "errors.email",
	"property":      "errors.property",
	"rating":        "errors.rating",
	"cleanliness":   "errors.dimension",
	"communication": "errors.dimension",
	"location":      "errors.dimension",
	"value":         "errors.dimension",
	"text":          "errors.text",
	"stayDate":      "errors.stayDate",
}

var newsletterErrorKeys = map[string]string{
	"email": "invalidEmail",
}

// Validator checks submissions. Property slugs are checked against the catalog.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a Validator. knownUnit reports whether a slug exists.
func NewValidator(knownUnit func(slug string) bool) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
		if knownUnit == nil {
			return true
		}
		return knownUnit(fl.Field().String())
	})
	return &Validator{v: v}
}

// Review validates a review submission. A nil result means valid.
func (v *Validator) Review(in ReviewSubmission) FieldErrors {
	return v.check(in, reviewErrorKeys)
}

// Newsletter validates a signup. A nil result means valid.
func (v *Validator) Newsletter(in NewsletterSignup) FieldErrors {
	return v.check(in, newsletterErrorKeys)
}

func (v *Validator) check(in any, keys map[string]string) FieldErrors {
	err := v.v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		key, ok := keys[field]
		if !ok {
			key = "errors." + field
		}
		out[field] = key
	}
	return out
}

// ReviewFromForm reads a posted review form. Unparseable numbers become
// out-of-range values so validation reports them.
func ReviewFromForm(values url.Values) ReviewSubmission {
	get := func(k string) string { return strings.TrimSpace(values.Get(k)) }
	return ReviewSubmission{
		GuestName:     get("name"),
		Email:         get("email"),
		PropertySlug:  get("property"),
		Rating:        parseRating(get("rating")),
		Cleanliness:   parseRating(get("cleanliness")),
		Communication: parseRating(get("communication")),
		Location:      parseRating(get("location")),
		Value:         parseRating(get("value")),
		Text:          get("text"),
		StayDate:      get("stayDate"),
	}
}

// NewsletterFromForm reads a posted signup form.
func NewsletterFromForm(values url.Values) NewsletterSignup {
	return NewsletterSignup{Email: strings.TrimSpace(values.Get("email"))}
}

func parseRating(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
