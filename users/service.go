package users

import (
	"context"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"user-accounts-backend/apperror"
	"user-accounts-backend/authentication"
	"user-accounts-backend/credentials"
	"user-accounts-backend/response"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Operation string

const (
	OpGetUser        Operation = "getUser"
	OpGetUsers       Operation = "getUsers"
	OpCreateUser     Operation = "createUser"
	OpLoginUser      Operation = "loginUser"
	OpUpdateUser     Operation = "updateUser"
	OpDeleteUser     Operation = "deleteUser"
	OpMe             Operation = "me"
	OpChangePassword Operation = "changePassword"
)

// operationAccess is the privilege each operation requires.
var operationAccess = map[Operation]authentication.Access{
	OpGetUser:        authentication.AdminOnly,
	OpGetUsers:       authentication.AdminOnly,
	OpCreateUser:     authentication.AdminOnly,
	OpLoginUser:      authentication.Public,
	OpUpdateUser:     authentication.AdminOnly,
	OpDeleteUser:     authentication.AdminOnly,
	OpMe:             authentication.Authenticated,
	OpChangePassword: authentication.Authenticated,
}

// sortFields maps accepted sortBy values onto document fields.
var sortFields = map[string]string{
	"username":  "username",
	"email":     "email",
	"address":   "address",
	"role":      "role",
	"createdAt": "created_at",
}

type Service struct {
	store     Store
	authority *authentication.Authority
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, authority *authentication.Authority, logger *zap.Logger) *Service {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Service{
		store:     store,
		authority: authority,
		validate:  validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Session is the result of a successful login.
type Session struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Page is one window of a user listing.
type Page struct {
	Users []User
	Info  response.PageInfo
}

func (s *Service) authorize(caller *authentication.Identity, op Operation) error {
	required, ok := operationAccess[op]
	if !ok {
		return apperror.New(apperror.ErrValidation, "unknown operation")
	}
	return authentication.Authorize(caller, required)
}

// ResolveAccount returns the current identity of the account id names.
func (s *Service) ResolveAccount(ctx context.Context, id string) (*authentication.Identity, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

func (s *Service) GetUser(ctx context.Context, caller *authentication.Identity, id string) (*User, error) {
	if err := s.authorize(caller, OpGetUser); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperror.New(apperror.ErrValidation, "id is required")
	}
	return s.store.FindByID(ctx, id)
}

func (s *Service) GetUsers(ctx context.Context, caller *authentication.Identity, req ListUsersRequest) (*Page, error) {
	if err := s.authorize(caller, OpGetUsers); err != nil {
		return nil, err
	}

	limit, page, err := normalizePagination(req.Pagination)
	if err != nil {
		return nil, err
	}

	var sortField string
	if req.Sort.SortBy != "" {
		field, ok := sortFields[req.Sort.SortBy]
		if !ok {
			return nil, apperror.New(apperror.ErrValidation, "sortBy must be one of username, email, address, role, createdAt")
		}
		sortField = field
	}
	var descending bool
	switch strings.ToLower(req.Sort.SortOrder) {
	case "", "asc":
	case "desc":
		descending = true
	default:
		return nil, apperror.New(apperror.ErrValidation, "sortOrder must be asc or desc")
	}

	filter := StoreFilter{Search: strings.TrimSpace(req.Filter.Search)}
	if req.Filter.Role != "" {
		role, err := authentication.ParseRole(req.Filter.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = role
	}

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	users, err := s.store.Find(ctx, Query{
		Filter:     filter,
		SortField:  sortField,
		Descending: descending,
		Skip:       int64((page - 1) * limit),
		Limit:      int64(limit),
	})
	if err != nil {
		return nil, err
	}

	return &Page{
		Users: users,
		Info: response.PageInfo{
			TotalUsers:  total,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			CurrentPage: page,
			Limit:       limit,
		},
	}, nil
}

// normalizePagination applies the default page size to an absent limit, for
// both the skip offset and the page count.
func normalizePagination(p Pagination) (limit, page int, err error) {
	if p.Limit < 0 || p.Page < 0 {
		return 0, 0, apperror.New(apperror.ErrValidation, "limit and page must not be negative")
	}
	limit = p.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	page = p.Page
	if page == 0 {
		page = 1
	}
	// (page-1)*limit is the skip offset and must fit in an int.
	if page-1 > math.MaxInt/limit {
		return 0, 0, apperror.New(apperror.ErrValidation, "page is out of range")
	}
	return limit, page, nil
}

func (s *Service) CreateUser(ctx context.Context, caller *authentication.Identity, req CreateUserRequest) (*User, error) {
	if err := s.authorize(caller, OpCreateUser); err != nil {
		return nil, err
	}
	user, err := s.insertUser(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)), zap.String("by", caller.ID))
	return user, nil
}

func (s *Service) insertUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	req.Address = strings.TrimSpace(req.Address)
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	role, err := authentication.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &User{
		Username:  req.Username,
		Email:     req.Email,
		Address:   req.Address,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.prepareForWrite(user, req.Password); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) LoginUser(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := s.authorize(nil, OpLoginUser); err != nil {
		return nil, err
	}
	req.Email = normalizeEmail(req.Email)
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if errors.Is(err, apperror.ErrNotFound) {
		credentials.BurnVerify(req.Password)
		return nil, apperror.ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if !credentials.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials
	}

	token, expiresAt, err := s.authority.Issue(*user.Identity())
	if err != nil {
		return nil, errors.Wrap(err, "issue session token")
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) UpdateUser(ctx context.Context, caller *authentication.Identity, id string, req UpdateUserRequest) (*User, error) {
	if err := s.authorize(caller, OpUpdateUser); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	req.Address = strings.TrimSpace(req.Address)
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.prepareForWrite(user, ""); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", user.ID), zap.String("by", caller.ID))
	return user, nil
}

// DeleteUser removes the account and returns it as it was before deletion.
func (s *Service) DeleteUser(ctx context.Context, caller *authentication.Identity, id string) (*User, error) {
	if err := s.authorize(caller, OpDeleteUser); err != nil {
		return nil, err
	}

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("by", caller.ID))
	return user, nil
}

func (s *Service) Me(ctx context.Context, caller *authentication.Identity) (*User, error) {
	if err := s.authorize(caller, OpMe); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, caller.ID)
}

// ChangePassword sets a new password on the caller's own account after
// checking the current one.
func (s *Service) ChangePassword(ctx context.Context, caller *authentication.Identity, req ChangePasswordRequest) error {
	if err := s.authorize(caller, OpChangePassword); err != nil {
		return err
	}
	if err := s.validateRequest(req); err != nil {
		return err
	}

	user, err := s.store.FindByID(ctx, caller.ID)
	if err != nil {
		return err
	}
	if !credentials.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return apperror.ErrInvalidCredentials
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.prepareForWrite(user, req.NewPassword); err != nil {
		return err
	}
	if err := s.store.Save(ctx, user); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("user_id", user.ID))
	return nil
}

// BootstrapAdmin describes the admin account seeded at startup.
type BootstrapAdmin struct {
	Username string
	Email    string
	Password string
	Address  string
}

// EnsureAdmin seeds an Admin account when none exists. It reports whether one was created.
func (s *Service) EnsureAdmin(ctx context.Context, admin BootstrapAdmin) (bool, error) {
	count, err := s.store.Count(ctx, StoreFilter{Role: authentication.RoleAdmin})
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, err := s.insertUser(ctx, CreateUserRequest{
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
		Address:  admin.Address,
		Role:     string(authentication.RoleAdmin),
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("bootstrap admin created", zap.String("user_id", user.ID))
	return true, nil
}

// prepareForWrite readies u for persistence. The password is hashed only when
// newPassword is set; otherwise the stored hash is kept as is.
func (s *Service) prepareForWrite(u *User, newPassword string) error {
	if newPassword != "" {
		hash, err := credentials.HashPassword(newPassword)
		switch {
		case errors.Is(err, credentials.ErrPasswordTooLong):
			return apperror.New(apperror.ErrValidation, "password must be at most 72 bytes")
		case err != nil:
			return errors.Wrap(err, "hash password")
		}
		u.PasswordHash = hash
	}
	if !credentials.IsHash(u.PasswordHash) {
		return apperror.New(apperror.ErrInternal, "refusing to store account without hashed credential")
	}
	if u.Role == "" {
		u.Role = authentication.RoleUser
	}
	return nil
}

func (s *Service) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate request")
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperror.New(apperror.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	}
	return fe.Field() + " is invalid"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
