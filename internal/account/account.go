// Package account implements the login, registration and profile flows.
package account

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quadtask/internal/service"
)

var (
	// ErrMissingCredentials means the email or password was empty. No request was sent.
	ErrMissingCredentials = errors.New("enter email and password")

	// ErrMissingFields means a registration field was empty. No request was sent.
	ErrMissingFields = errors.New("fill in all fields")

	// ErrRegistrationFailed is used when the server gives no detail.
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrNothingToUpdate means the profile form had no changes. No request was sent.
	ErrNothingToUpdate = errors.New("nothing to update")

	// ErrProfileUpdateFailed wraps any failed profile update.
	ErrProfileUpdateFailed = errors.New("failed to update profile")

	// ErrProfileLoadFailed wraps any failed profile load.
	ErrProfileLoadFailed = errors.New("failed to load profile")
)

// TokenStore persists the session token.
type TokenStore interface {
	SaveToken(accessToken string) error
}

// Credentials are the login form fields.
type Credentials struct {
	Email    string
	Password string
}

// Validate checks that both fields are present.
func (c Credentials) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.Password, validation.Required),
	); err != nil {
		return ErrMissingCredentials
	}
	return nil
}

// Login validates locally, exchanges the credentials for a token and stores it.
// Any server rejection is reported as service.ErrInvalidCredentials.
func Login(ctx context.Context, svc service.Service, store TokenStore, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	token, err := svc.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return err
	}
	return store.SaveToken(token)
}

// RegistrationForm holds the registration form fields.
type RegistrationForm struct {
	Nickname string
	Email    string
	Password string
}

// Validate checks that all three fields are present.
func (f RegistrationForm) Validate() error {
	if err := validation.ValidateStruct(&f,
		validation.Field(&f.Nickname, validation.Required),
		validation.Field(&f.Email, validation.Required),
		validation.Field(&f.Password, validation.Required),
	); err != nil {
		return ErrMissingFields
	}
	return nil
}

// RegisterError carries the message to show when registration fails.
type RegisterError struct {
	Message string
	Err     error
}

func (e *RegisterError) Error() string { return e.Message }
func (e *RegisterError) Unwrap() error { return e.Err }

// Register validates locally and creates the account.
// On failure the server's detail message is surfaced verbatim.
func Register(ctx context.Context, svc service.Service, form RegistrationForm) (service.User, error) {
	if err := form.Validate(); err != nil {
		return service.User{}, err
	}
	user, err := svc.Register(ctx, service.Registration{
		Nickname: form.Nickname,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		msg := ErrRegistrationFailed.Error()
		var httpErr *service.HTTPError
		if errors.As(err, &httpErr) {
			if detail := httpErr.Detail(); detail != "" {
				msg = detail
			}
		}
		return service.User{}, &RegisterError{Message: msg, Err: err}
	}
	return user, nil
}

// ProfileForm holds the profile form fields.
// Empty fields are left unchanged on save.
type ProfileForm struct {
	Nickname string
	Password string
}

// Update builds the payload, omitting empty fields.
func (f ProfileForm) Update() service.ProfileUpdate {
	return service.ProfileUpdate{
		Nickname: strings.TrimSpace(f.Nickname),
		Password: f.Password,
	}
}

// LoadProfile fetches the current user.
func LoadProfile(ctx context.Context, svc service.Service) (service.User, error) {
	user, err := svc.Me(ctx)
	if err != nil {
		return service.User{}, errors.Join(ErrProfileLoadFailed, err)
	}
	return user, nil
}

// SaveProfile submits only the changed fields.
func SaveProfile(ctx context.Context, svc service.Service, form ProfileForm) error {
	update := form.Update()
	if update.Empty() {
		return ErrNothingToUpdate
	}
	if err := svc.UpdateMe(ctx, update); err != nil {
		return errors.Join(ErrProfileUpdateFailed, err)
	}
	return nil
}
