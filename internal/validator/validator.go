// Package validator checks registration, login and profile payloads and
// collects every failure per field.
package validator

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"user_auth/internal/model"

	playground "github.com/go-playground/validator/v10"
)

const (
	CodeRequired         = "required"
	CodeMaxLength        = "max_length"
	CodeInvalidEmail     = "invalid_email"
	CodeDuplicateEmail   = "duplicate_email"
	CodeInvalidName      = "invalid_name"
	CodeWeakPassword     = "weak_password"
	CodePasswordMismatch = "password_mismatch"
	CodeInvalidPhone     = "invalid_phone"
	CodeDuplicatePhone   = "duplicate_phone"
	CodeInvalidImage     = "invalid_image"
	CodeFileTooLarge     = "file_too_large"
	CodeImageTooLarge    = "image_too_large"
)

// FieldError is a single failure attached to a field
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors maps a field path such as "profile.phone_number" to its failures
type Errors map[string][]FieldError

func (e Errors) Add(field, code, message string) {
	e[field] = append(e[field], FieldError{Code: code, Message: message})
}

func (e Errors) Has(field, code string) bool {
	for _, fe := range e[field] {
		if fe.Code == code {
			return true
		}
	}
	return false
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Lookup answers the uniqueness questions validation needs
type Lookup interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string, excludeProfileID int64) (bool, error)
}

type Options struct {
	Region         string // Default region for numbers without a country code
	MaxUploadBytes int64
	MaxPhotoWidth  int
	MaxPhotoHeight int
}

var lettersRegex = regexp.MustCompile(`^[A-Za-z]*$`)

type Validator struct {
	validate *playground.Validate
	lookup   Lookup
	opts     Options
}

func New(lookup Lookup, opts Options) *Validator {
	if opts.MaxPhotoWidth == 0 {
		opts.MaxPhotoWidth = 300
	}
	if opts.MaxPhotoHeight == 0 {
		opts.MaxPhotoHeight = 300
	}

	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("letters", func(fl playground.FieldLevel) bool {
		return lettersRegex.MatchString(fl.Field().String())
	})

	return &Validator{validate: v, lookup: lookup, opts: opts}
}

// ValidateRegistration normalizes the email and phone number in place
func (v *Validator) ValidateRegistration(ctx context.Context, in *model.RegistrationInput) (Errors, error) {
	in.Email = NormalizeEmail(in.Email)
	errs := v.structErrors(in)

	if _, bad := errs["email"]; !bad {
		exists, err := v.lookup.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			errs.Add("email", CodeDuplicateEmail, "user with this email address already exists.")
		}
	}

	if _, bad := errs["password"]; !bad {
		for _, msg := range ValidatePassword(in.Password,
			UserAttribute{"email address", in.Email},
			UserAttribute{"first name", in.FirstName},
			UserAttribute{"last name", in.LastName},
		) {
			errs.Add("password", CodeWeakPassword, msg)
		}
	}
	if in.Password != "" && in.Password2 != "" && in.Password != in.Password2 {
		errs.Add("password2", CodePasswordMismatch, "Password fields didn't match.")
	}

	if _, bad := errs["profile.phone_number"]; !bad {
		if err := v.checkPhone(ctx, errs, "profile.phone_number", &in.Profile.PhoneNumber, 0); err != nil {
			return nil, err
		}
	}
	if in.Profile.Photo != nil {
		v.checkPhoto(errs, "profile.photo", in.Profile.Photo)
	}

	return result(errs), nil
}

func (v *Validator) ValidateLogin(in *model.LoginInput) Errors {
	in.Email = NormalizeEmail(in.Email)
	return result(v.structErrors(in))
}

// ValidateProfileCreate checks an admin-supplied user and profile
func (v *Validator) ValidateProfileCreate(ctx context.Context, in *model.ProfileCreateInput) (Errors, error) {
	in.User.Email = NormalizeEmail(in.User.Email)
	errs := v.structErrors(in)

	if _, bad := errs["user.email"]; !bad {
		exists, err := v.lookup.EmailExists(ctx, in.User.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			errs.Add("user.email", CodeDuplicateEmail, "user with this email address already exists.")
		}
	}

	if in.PhoneNumber != nil && strings.TrimSpace(*in.PhoneNumber) == "" {
		in.PhoneNumber = nil
	}
	if _, bad := errs["phone_number"]; !bad && in.PhoneNumber != nil {
		if err := v.checkPhone(ctx, errs, "phone_number", in.PhoneNumber, 0); err != nil {
			return nil, err
		}
	}

	return result(errs), nil
}

// ValidateProfileUpdate checks the fields present in an update of profileID.
// An empty phone number is kept as a request to clear it.
func (v *Validator) ValidateProfileUpdate(ctx context.Context, profileID int64, in *model.ProfileUpdateInput) (Errors, error) {
	errs := v.structErrors(in)

	if in.PhoneNumber != nil {
		trimmed := strings.TrimSpace(*in.PhoneNumber)
		in.PhoneNumber = &trimmed
	}
	if _, bad := errs["phone_number"]; !bad && in.PhoneNumber != nil && *in.PhoneNumber != "" {
		if err := v.checkPhone(ctx, errs, "phone_number", in.PhoneNumber, profileID); err != nil {
			return nil, err
		}
	}
	if in.Photo != nil {
		v.checkPhoto(errs, "photo", in.Photo)
	}

	return result(errs), nil
}

// ValidateSuperuser checks the email, password and optional phone of a new superuser
func (v *Validator) ValidateSuperuser(ctx context.Context, in *model.SuperuserInput) (Errors, error) {
	in.Email = NormalizeEmail(in.Email)
	errs := v.structErrors(in)

	if _, bad := errs["email"]; !bad {
		exists, err := v.lookup.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			errs.Add("email", CodeDuplicateEmail, "user with this email address already exists.")
		}
	}
	if _, bad := errs["password"]; !bad {
		for _, msg := range ValidatePassword(in.Password,
			UserAttribute{"email address", in.Email},
			UserAttribute{"first name", in.FirstName},
			UserAttribute{"last name", in.LastName},
		) {
			errs.Add("password", CodeWeakPassword, msg)
		}
	}

	if in.PhoneNumber != nil && strings.TrimSpace(*in.PhoneNumber) == "" {
		in.PhoneNumber = nil
	}
	if _, bad := errs["phone_number"]; !bad && in.PhoneNumber != nil {
		if err := v.checkPhone(ctx, errs, "phone_number", in.PhoneNumber, 0); err != nil {
			return nil, err
		}
	}

	return result(errs), nil
}

// NormalizePhone normalizes raw using the configured default region
func (v *Validator) NormalizePhone(raw string) (string, bool) {
	return NormalizePhone(raw, v.opts.Region)
}

func (v *Validator) checkPhone(ctx context.Context, errs Errors, field string, phone *string, excludeID int64) error {
	normalized, ok := NormalizePhone(*phone, v.opts.Region)
	if !ok {
		errs.Add(field, CodeInvalidPhone, "Enter a valid phone number.")
		return nil
	}
	*phone = normalized

	exists, err := v.lookup.PhoneExists(ctx, normalized, excludeID)
	if err != nil {
		return err
	}
	if exists {
		errs.Add(field, CodeDuplicatePhone, "user profile with this phone number already exists.")
	}
	return nil
}

func (v *Validator) checkPhoto(errs Errors, field string, up *model.Upload) {
	for _, fe := range CheckImage(up, v.opts.MaxUploadBytes, v.opts.MaxPhotoWidth, v.opts.MaxPhotoHeight) {
		errs.Add(field, fe.Code, fe.Message)
	}
}

func (v *Validator) structErrors(s any) Errors {
	errs := Errors{}
	err := v.validate.Struct(s)
	if err == nil {
		return errs
	}
	verrs, ok := err.(playground.ValidationErrors)
	if !ok {
		errs.Add("non_field_errors", "invalid", err.Error())
		return errs
	}
	for _, fe := range verrs {
		field := fe.Namespace()
		// Drop the root type name
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		code, msg := describe(fe)
		errs.Add(field, code, msg)
	}
	return errs
}

func describe(fe playground.FieldError) (string, string) {
	switch fe.Tag() {
	case "required":
		return CodeRequired, "This field is required."
	case "email":
		return CodeInvalidEmail, "Enter a valid email address."
	case "max":
		return CodeMaxLength, fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "letters":
		return CodeInvalidName, "Only letters are allowed."
	default:
		return fe.Tag(), fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

func result(errs Errors) Errors {
	if errs.Empty() {
		return nil
	}
	return errs
}

// NormalizeEmail trims the address and lowercases its domain part
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
