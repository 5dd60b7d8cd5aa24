package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/store"
	"yamdb/internal/utils"
)

// UserInput is a partial user. Nil fields are left unchanged.
type UserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *models.Role
}

type UserService struct {
	store *store.Store
	log   *zap.Logger
}

func NewUserService(st *store.Store, log *zap.Logger) *UserService {
	return &UserService{store: st, log: log}
}

func (s *UserService) List(ctx context.Context, search string, page store.Page) ([]models.User, int64, error) {
	return s.store.ListUsers(ctx, strings.TrimSpace(search), page)
}

func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	return s.store.UserByUsername(ctx, username)
}

// Create adds a user on behalf of an admin. No confirmation code is sent;
// the user requests one through signup with the same username and email.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	ve := &apperr.ValidationError{}
	if in.Username == nil || strings.TrimSpace(*in.Username) == "" {
		ve.Add("username", "This field is required.")
	}
	if in.Email == nil || strings.TrimSpace(*in.Email) == "" {
		ve.Add("email", "This field is required.")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	u := &models.User{Role: models.RoleUser, Password: UnusablePassword()}
	if err := s.apply(ctx, u, in, true); err != nil {
		return nil, err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, conflictAsValidation(err, apperr.NonFieldErrors, "a user with this username or email already exists")
	}
	s.log.Info("User created", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	return u, nil
}

// Update patches the user. Admins may change the role.
func (s *UserService) Update(ctx context.Context, username string, in UserInput) (*models.User, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.patch(ctx, u, in, true)
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	u, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, u.ID); err != nil {
		return err
	}
	s.log.Info("User deleted", zap.String("username", username))
	return nil
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, caller policy.Caller) (*models.User, error) {
	if !caller.Authenticated {
		return nil, apperr.ErrUnauthenticated
	}
	return s.store.UserByID(ctx, caller.UserID)
}

// UpdateMe patches the caller's profile. Role changes are ignored.
func (s *UserService) UpdateMe(ctx context.Context, caller policy.Caller, in UserInput) (*models.User, error) {
	u, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	in.Role = nil
	return s.patch(ctx, u, in, false)
}

// CreateSuperuser adds a confirmed admin with the superuser flag.
func (s *UserService) CreateSuperuser(ctx context.Context, username, email string) (*models.User, error) {
	admin := models.RoleAdmin
	u := &models.User{Password: UnusablePassword(), IsSuperuser: true, IsConfirmed: true}
	if err := s.apply(ctx, u, UserInput{Username: &username, Email: &email, Role: &admin}, true); err != nil {
		return nil, err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, conflictAsValidation(err, apperr.NonFieldErrors, "a user with this username or email already exists")
	}
	s.log.Info("Superuser created", zap.String("username", u.Username))
	return u, nil
}

func (s *UserService) patch(ctx context.Context, u *models.User, in UserInput, allowRole bool) (*models.User, error) {
	before := *u
	if !allowRole {
		in.Role = nil
	}
	if err := s.apply(ctx, u, in, false); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if u.Username != before.Username {
		fields["username"] = u.Username
	}
	if u.Email != before.Email {
		fields["email"] = u.Email
	}
	if u.FirstName != before.FirstName {
		fields["first_name"] = u.FirstName
	}
	if u.LastName != before.LastName {
		fields["last_name"] = u.LastName
	}
	if u.Bio != before.Bio {
		fields["bio"] = u.Bio
	}
	if u.Role != before.Role {
		fields["role"] = u.Role
	}

	updated, err := s.store.UpdateUser(ctx, u.ID, fields)
	if err != nil {
		return nil, conflictAsValidation(err, apperr.NonFieldErrors, "a user with this username or email already exists")
	}
	return updated, nil
}

// apply validates in and copies it onto u. Uniqueness is checked against
// every other user.
func (s *UserService) apply(ctx context.Context, u *models.User, in UserInput, creating bool) error {
	ve := &apperr.ValidationError{}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		switch {
		case name == "":
			ve.Add("username", "This field may not be blank.")
		case utf8.RuneCountInString(name) > UsernameMaxLength:
			ve.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", UsernameMaxLength))
		case name == ReservedUsername:
			ve.Add("username", `The username "me" is not allowed.`)
		case !ValidUsername(name):
			ve.Add("username", "Invalid username format.")
		default:
			taken, err := s.store.UsernameTaken(ctx, name, u.ID)
			if err != nil {
				return err
			}
			if taken {
				ve.Add("username", "A user with this username already exists.")
			}
		}
		u.Username = name
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if !validEmail(email) {
			ve.Add("email", "Enter a valid email address.")
		} else {
			taken, err := s.store.EmailTaken(ctx, email, u.ID)
			if err != nil {
				return err
			}
			if taken {
				ve.Add("email", "A user with this email already exists.")
			}
		}
		u.Email = email
	}

	if in.FirstName != nil {
		u.FirstName = limitField(ve, "first_name", utils.StripHTML(*in.FirstName), 150)
	}
	if in.LastName != nil {
		u.LastName = limitField(ve, "last_name", utils.StripHTML(*in.LastName), 150)
	}
	if in.Bio != nil {
		u.Bio = utils.StripHTML(*in.Bio)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			ve.Add("role", fmt.Sprintf("%q is not a valid choice.", string(*in.Role)))
		} else {
			u.Role = *in.Role
		}
	}
	if creating && u.Role == "" {
		u.Role = models.RoleUser
	}
	return ve.Err()
}

func limitField(ve *apperr.ValidationError, field, value string, max int) string {
	if utf8.RuneCountInString(value) > max {
		ve.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", max))
	}
	return value
}

// conflictAsValidation reports a store uniqueness violation as a field error.
func conflictAsValidation(err error, field, message string) error {
	if errors.Is(err, apperr.ErrConflict) {
		return apperr.Validation(field, message)
	}
	return err
}
