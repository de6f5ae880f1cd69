package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	validate "github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/password"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/token"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/config"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/geoip"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/notify"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/repo"
)

// notifyTimeout bounds the background notification dispatch, including the
// geolocation lookup. It is detached from the request context on purpose.
const notifyTimeout = 10 * time.Second

type accountService struct {
	accounts repo.AccountRepo
	hasher   password.Hasher
	tokens   token.Issuer
	notifier notify.Notifier
	geo      geoip.Resolver
	cfg      *config.Config
	v        *validate.Validate
	log      *zap.Logger
}

func (a *accountService) Register(ctx context.Context, d dto.RegisterDTO) (model.AuthResult, error) {
	d.Email = normalizeEmail(d.Email)

	if err := a.v.Struct(d); err != nil {
		return model.AuthResult{}, customErrors.NewInvalidArgument(err.Error())
	}

	// Advisory check; the unique index on email is the real guard against
	// a concurrent registration slipping between this lookup and the insert.
	// Checked before the password policy so a taken email is reported as
	// such no matter what password came with it.
	_, err := a.accounts.GetByEmail(ctx, d.Email)
	if err == nil {
		return model.AuthResult{}, customErrors.ErrAlreadyExists
	}
	if !errors.Is(err, customErrors.ErrNotFound) {
		return model.AuthResult{}, customErrors.WrapInternal(err, "Register")
	}

	if utf8.RuneCountInString(d.Password) < a.cfg.MinPasswordLength {
		return model.AuthResult{}, customErrors.NewWeakPassword(
			fmt.Sprintf("password must be at least %d characters long", a.cfg.MinPasswordLength))
	}

	passwordHash, err := a.hasher.Hash(d.Password)
	if err != nil {
		return model.AuthResult{}, customErrors.WrapInternal(err, "Register")
	}

	now := time.Now().UTC()
	account := model.Account{
		Email:        d.Email,
		PasswordHash: passwordHash,
		Name:         d.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := a.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.AuthResult{}, customErrors.ErrAlreadyExists
		}
		return model.AuthResult{}, customErrors.WrapInternal(err, "Register")
	}
	account.ID = id

	signed, exp, err := a.tokens.Issue(id.Hex(), account.Email, a.cfg.TokenTTL)
	if err != nil {
		return model.AuthResult{}, customErrors.WrapInternal(err, "Register")
	}

	a.dispatch(a.notifier.Registration, notify.Event{
		Email:     account.Email,
		Name:      account.Name,
		AccountID: id.Hex(),
		ClientIP:  d.ClientIP,
		At:        now,
	})

	return model.AuthResult{Account: account, Token: signed, TTL: time.Until(exp)}, nil
}

func (a *accountService) Login(ctx context.Context, d dto.LoginDTO) (model.AuthResult, error) {
	d.Email = normalizeEmail(d.Email)

	if err := a.v.Struct(d); err != nil {
		return model.AuthResult{}, customErrors.NewInvalidArgument(err.Error())
	}

	account, err := a.accounts.GetByEmail(ctx, d.Email)
	if errors.Is(err, customErrors.ErrNotFound) {
		// Same outcome as a wrong password so the response never reveals
		// whether the email is registered.
		return model.AuthResult{}, customErrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.AuthResult{}, customErrors.WrapInternal(err, "Login")
	}

	if !a.hasher.Verify(d.Password, account.PasswordHash) {
		return model.AuthResult{}, customErrors.ErrInvalidCredentials
	}

	signed, exp, err := a.tokens.Issue(account.ID.Hex(), account.Email, a.cfg.TokenTTL)
	if err != nil {
		return model.AuthResult{}, customErrors.WrapInternal(err, "Login")
	}

	a.dispatch(a.notifier.Login, notify.Event{
		Email:     account.Email,
		Name:      account.Name,
		AccountID: account.ID.Hex(),
		ClientIP:  d.ClientIP,
		At:        time.Now().UTC(),
	})

	return model.AuthResult{Account: account, Token: signed, TTL: time.Until(exp)}, nil
}

func (a *accountService) CheckEmail(ctx context.Context, d dto.CheckEmailDTO) (bool, error) {
	d.Email = normalizeEmail(d.Email)

	if err := a.v.Struct(d); err != nil {
		return false, customErrors.NewInvalidArgument(err.Error())
	}

	_, err := a.accounts.GetByEmail(ctx, d.Email)
	if errors.Is(err, customErrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, customErrors.WrapInternal(err, "CheckEmail")
	}
	return true, nil
}

func (a *accountService) RequestPasswordReset(ctx context.Context, d dto.ForgotPasswordDTO) error {
	d.Email = normalizeEmail(d.Email)

	if err := a.v.Struct(d); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	account, err := a.accounts.GetByEmail(ctx, d.Email)
	if errors.Is(err, customErrors.ErrNotFound) {
		// The caller gets the same generic success either way.
		return nil
	}
	if err != nil {
		return customErrors.WrapInternal(err, "RequestPasswordReset")
	}

	a.dispatch(a.notifier.PasswordReset, notify.Event{
		Email:     account.Email,
		Name:      account.Name,
		AccountID: account.ID.Hex(),
		ClientIP:  d.ClientIP,
		At:        time.Now().UTC(),
	})

	return nil
}

func (a *accountService) CurrentAccount(ctx context.Context, rawToken string) (model.Account, error) {
	if rawToken == "" {
		return model.Account{}, customErrors.ErrInvalidToken
	}

	claims, err := a.tokens.Verify(rawToken)
	if err != nil {
		return model.Account{}, customErrors.ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return model.Account{}, customErrors.ErrInvalidToken
	}

	account, err := a.accounts.GetByID(ctx, id)
	if err != nil {
		// Covers the account deleted after issuance; deliberately the same
		// failure as a bad token.
		return model.Account{}, customErrors.ErrInvalidToken
	}
	return account, nil
}

// dispatch sends a notification in the background. The request is already
// decided at this point; a slow or failing sink only produces a log line.
func (a *accountService) dispatch(send func(context.Context, notify.Event) error, ev notify.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if ev.ClientIP != "" {
			ev.Location = a.geo.Lookup(ctx, ev.ClientIP)
		}
		if err := send(ctx, ev); err != nil {
			a.log.Warn("notification failed",
				zap.String("account_id", ev.AccountID),
				zap.Error(err),
			)
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
