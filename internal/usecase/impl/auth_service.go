package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"taskboard/config"
	"taskboard/internal/delivery/api/validator"
	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/domain/service"
	"taskboard/internal/infra/metrics"
	"taskboard/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo  repository.UserRepository
	hasher    service.PasswordHasher
	issuer    *sessionIssuer
	events    *eventEmitter
	validator *validator.Validator
	lifetimes config.TokenLifetimes
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Publisher        service.EventPublisher `optional:"true"`
	Metrics          *metrics.Metrics       `optional:"true"`
	Config           *config.Config
	Logger           *slog.Logger
	Clock            func() time.Time `name:"clock" optional:"true"`
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	now := orNow(params.Clock)

	return &authService{
		userRepo: params.UserRepo,
		hasher:   params.Hasher,
		issuer: &sessionIssuer{
			tokens:      params.TokenService,
			refreshRepo: params.RefreshTokenRepo,
			now:         now,
		},
		events: &eventEmitter{
			publisher: params.Publisher,
			metrics:   params.Metrics,
			logger:    params.Logger,
			now:       now,
		},
		validator: validator.New(),
		lifetimes: params.Config.Auth.Login,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// Register validates the input, hashes the password and creates a user with role "user".
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (output *usecase.RegisterOutput, err error) {
	defer func() { srv.metrics.ObserveAuth("register", err) }()

	user, err := srv.createUser(ctx, input, entity.RoleUser)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("User registered", slog.Any("userID", user.ID))
	srv.events.emit(ctx, service.AuthEventUserRegistered, user.ID, map[string]string{"email": user.Email})

	return &usecase.RegisterOutput{User: user}, nil
}

func (srv *authService) createUser(ctx context.Context, input usecase.RegisterInput, role entity.Role) (*entity.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = entity.NormalizeEmail(input.Email)
	if err := srv.validator.Validate(&input); err != nil {
		return nil, err
	}

	email := input.Email

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	user := &entity.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			srv.log(ctx).Warn("Registration rejected, email already exists", slog.String("email", email))

			return nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, "failed to create user")
		}

		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	return user, nil
}

// Login orchestrates the user login process.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (output *usecase.LoginOutput, err error) {
	defer func() { srv.metrics.ObserveAuth("login", err) }()

	input.Email = entity.NormalizeEmail(input.Email)
	if err := srv.validator.Validate(&input); err != nil {
		return nil, err
	}

	email := input.Email
	srv.log(ctx).Debug("Starting user login", slog.String("email", email))

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed, user not found", slog.String("email", email))

			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	// bcrypt is CPU-bound; nothing is held open while it runs.
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed, password mismatch", slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidPassword, "login failed")
	}

	session, err := srv.issuer.issue(ctx, user, srv.lifetimes)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))
	srv.events.emit(ctx, service.AuthEventUserLoggedIn, user.ID, nil)

	return &usecase.LoginOutput{Session: *session}, nil
}

// EnsureAdmin creates an admin account or promotes an existing one.
func (srv *authService) EnsureAdmin(ctx context.Context, input usecase.RegisterInput) (*entity.User, bool, error) {
	existing, err := srv.userRepo.FindByEmail(ctx, entity.NormalizeEmail(input.Email))
	switch {
	case err == nil:
		if existing.Role != entity.RoleAdmin {
			if err := srv.userRepo.UpdateRole(ctx, existing.ID, entity.RoleAdmin); err != nil {
				return nil, false, errors.Wrap(err, "failed to promote user")
			}
			existing.Role = entity.RoleAdmin
		}
		srv.log(ctx).Info("Admin ensured for existing account", slog.Any("userID", existing.ID))

		return existing, false, nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, false, errors.Wrap(err, "failed to find user by email")
	}

	user, err := srv.createUser(ctx, input, entity.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	srv.log(ctx).Info("Admin account created", slog.Any("userID", user.ID))

	return user, true, nil
}
