package service

import (
	"context"

	validate "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/password"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/token"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/config"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/geoip"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/notify"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/repo"
)

type AccountService interface {
	Register(ctx context.Context, dto dto.RegisterDTO) (model.AuthResult, error)
	Login(ctx context.Context, dto dto.LoginDTO) (model.AuthResult, error)
	CheckEmail(ctx context.Context, dto dto.CheckEmailDTO) (bool, error)
	RequestPasswordReset(ctx context.Context, dto dto.ForgotPasswordDTO) error
	CurrentAccount(ctx context.Context, rawToken string) (model.Account, error)
}

func NewAccountService(
	accounts repo.AccountRepo,
	hasher password.Hasher,
	tokens token.Issuer,
	notifier notify.Notifier,
	geo geoip.Resolver,
	cfg *config.Config,
	v *validate.Validate,
	log *zap.Logger,
) AccountService {
	return &accountService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		geo:      geo,
		cfg:      cfg,
		v:        v,
		log:      log,
	}
}
