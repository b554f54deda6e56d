package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/ErlanBelekov/todo-api/internal/email"
	"github.com/ErlanBelekov/todo-api/internal/metrics"
	"github.com/ErlanBelekov/todo-api/internal/password"
	"github.com/ErlanBelekov/todo-api/internal/repository"
	"github.com/ErlanBelekov/todo-api/internal/token"
)

const ResetPath = "/api/user/reset/"

// mailTimeout bounds a reset email sent after the request has returned.
const mailTimeout = 30 * time.Second

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hashed, plain string) error
}

type SessionIssuer interface {
	Issue(userID string) (string, error)
}

type AccountUsecase struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	sessions SessionIssuer
	email    email.Sender
	logger   *slog.Logger
	resetTTL time.Duration
	now      func() time.Time

	dummyOnce sync.Once
	dummy     string
	mail      sync.WaitGroup
}

func NewAccountUsecase(
	users repository.UserRepository,
	hasher PasswordHasher,
	sessions SessionIssuer,
	emailSender email.Sender,
	logger *slog.Logger,
) *AccountUsecase {
	return &AccountUsecase{
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		email:    emailSender,
		logger:   logger.With("component", "account_usecase"),
		resetTTL: token.ResetTokenTTL,
		now:      time.Now,
	}
}

// WithClock replaces time.Now; reset-token expiry is computed from it.
func (u *AccountUsecase) WithClock(now func() time.Time) *AccountUsecase {
	u.now = now
	return u
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is a user paired with a freshly issued session token.
type AuthResult struct {
	User  *domain.User
	Token string
}

type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

func (u *AccountUsecase) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	emailAddr := domain.NormalizeEmail(input.Email)

	if _, err := u.users.FindByEmail(ctx, emailAddr); err == nil {
		metrics.AuthEventsTotal.WithLabelValues("signup", "conflict").Inc()
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, &domain.User{
		Email:        emailAddr,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.AuthEventsTotal.WithLabelValues("signup", "conflict").Inc()
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	signed, err := u.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	metrics.AuthEventsTotal.WithLabelValues("signup", "ok").Inc()
	return &AuthResult{User: user, Token: signed}, nil
}

// Login returns domain.ErrInvalidCredentials both for an unknown email and a
// wrong password so callers cannot probe which accounts exist.
func (u *AccountUsecase) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := u.users.FindByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same bcrypt work as a wrong password.
			if dummy := u.dummyHash(); dummy != "" {
				_ = u.hasher.Compare(dummy, input.Password)
			}
			metrics.AuthEventsTotal.WithLabelValues("login", "invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err = u.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			metrics.AuthEventsTotal.WithLabelValues("login", "invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	signed, err := u.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	metrics.AuthEventsTotal.WithLabelValues("login", "ok").Inc()
	return &AuthResult{User: user, Token: signed}, nil
}

// dummyHash is a hash at the configured cost, built on first use. It is empty
// if hashing fails.
func (u *AccountUsecase) dummyHash() string {
	u.dummyOnce.Do(func() {
		hashed, err := u.hasher.Hash("login-timing-placeholder")
		if err != nil {
			u.logger.Error("build dummy password hash", "error", err)
			return
		}
		u.dummy = hashed
	})
	return u.dummy
}

// ForgotPassword stores the hash of a new reset token on the user and queues
// the plaintext link for delivery. Known and unknown emails both return after
// the store write; send failures are only logged. linkBase is the
// scheme://host the link points at.
func (u *AccountUsecase) ForgotPassword(ctx context.Context, emailAddr, linkBase string) error {
	emailAddr = domain.NormalizeEmail(emailAddr)
	if emailAddr == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	plain, hashed, err := token.NewResetToken()
	if err != nil {
		return err
	}

	user, err := u.users.SetResetToken(ctx, emailAddr, hashed, u.now().Add(u.resetTTL))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthEventsTotal.WithLabelValues("forgot_password", "unknown_email").Inc()
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("store reset token: %w", err)
	}

	link := strings.TrimRight(linkBase, "/") + ResetPath + plain
	sendCtx := context.WithoutCancel(ctx)
	u.mail.Add(1)
	go func() {
		defer u.mail.Done()
		ctx, cancel := context.WithTimeout(sendCtx, mailTimeout)
		defer cancel()
		if err := u.sendResetRequest(ctx, user, link); err != nil {
			u.logger.ErrorContext(ctx, "send reset email", "user_id", user.ID, "error", err)
		}
	}()

	metrics.AuthEventsTotal.WithLabelValues("forgot_password", "ok").Inc()
	return nil
}

func (u *AccountUsecase) sendResetRequest(ctx context.Context, user *domain.User, link string) error {
	body, err := email.RenderResetRequest(email.ResetRequestData{
		Name:     user.Name,
		Link:     link,
		ValidFor: u.resetTTL.String(),
	})
	if err == nil {
		err = u.email.Send(ctx, user.Email, email.SubjectResetRequest, body)
	}
	metrics.EmailsSentTotal.WithLabelValues("reset_request", metrics.Outcome(err)).Inc()
	return err
}

// Wait blocks until queued reset emails have been handed to the sender.
func (u *AccountUsecase) Wait() {
	u.mail.Wait()
}

// CheckResetToken resolves a plaintext reset token to its user, or returns
// domain.ErrResetTokenInvalid when it is unknown, expired or already used.
func (u *AccountUsecase) CheckResetToken(ctx context.Context, rawToken string) (*domain.User, error) {
	if rawToken == "" {
		return nil, domain.ErrResetTokenInvalid
	}
	tokenHash := token.HashResetToken(rawToken)
	now := u.now()

	user, err := u.users.FindByResetToken(ctx, tokenHash, now)
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return nil, domain.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}

	var stored string
	if user.ResetTokenHash != nil {
		stored = *user.ResetTokenHash
	}
	if !token.VerifyResetToken(tokenHash, stored, user.ResetTokenExpiresAt, now) {
		return nil, domain.ErrResetTokenInvalid
	}
	return user, nil
}

// ResetPassword sets a new password and clears the reset pair in a single
// conditional write, so a token can be used at most once even under races.
func (u *AccountUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if _, err := u.CheckResetToken(ctx, rawToken); err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			metrics.AuthEventsTotal.WithLabelValues("reset_password", "invalid_token").Inc()
		}
		return err
	}

	hash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user, err := u.users.ConsumeResetToken(ctx, token.HashResetToken(rawToken), hash, u.now())
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			metrics.AuthEventsTotal.WithLabelValues("reset_password", "invalid_token").Inc()
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	metrics.AuthEventsTotal.WithLabelValues("reset_password", "ok").Inc()

	// The password is already changed; a failed notice must not undo that.
	body, err := email.RenderPasswordChanged(email.PasswordChangedData{Name: user.Name, Email: user.Email})
	if err == nil {
		err = u.email.Send(ctx, user.Email, email.SubjectPasswordChanged, body)
	}
	metrics.EmailsSentTotal.WithLabelValues("password_changed", metrics.Outcome(err)).Inc()
	if err != nil {
		u.logger.ErrorContext(ctx, "send password changed email", "user_id", user.ID, "error", err)
	}
	return nil
}

// UpdateProfile applies the allow-listed fields. A new password is hashed and
// a new email is normalized before anything is written.
func (u *AccountUsecase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	var upd domain.ProfileUpdate

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		upd.Name = &name
	}
	if input.Email != nil {
		normalized := domain.NormalizeEmail(*input.Email)
		if normalized == "" {
			return nil, fmt.Errorf("%w: email must not be empty", domain.ErrInvalidInput)
		}
		upd.Email = &normalized
	}
	if input.Password != nil {
		hash, err := u.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	if upd.Empty() {
		user, err := u.users.FindByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
		return user, nil
	}

	user, err := u.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}
