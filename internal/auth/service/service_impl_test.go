package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	validate "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/password"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/token"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/config"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/notify"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type accountRepoStub struct {
	mu       sync.Mutex
	byEmail  map[string]model.Account
	failWith error
}

func newAccountRepoStub() *accountRepoStub {
	return &accountRepoStub{byEmail: make(map[string]model.Account)}
}

func (r *accountRepoStub) Create(_ context.Context, m model.Account) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return primitive.NilObjectID, r.failWith
	}
	if _, ok := r.byEmail[m.Email]; ok {
		return primitive.NilObjectID, customErrors.ErrAlreadyExists
	}
	m.ID = primitive.NewObjectID()
	r.byEmail[m.Email] = m
	return m.ID, nil
}

func (r *accountRepoStub) GetByEmail(_ context.Context, email string) (model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return model.Account{}, r.failWith
	}
	m, ok := r.byEmail[email]
	if !ok {
		return model.Account{}, customErrors.ErrNotFound
	}
	return m, nil
}

func (r *accountRepoStub) GetByID(_ context.Context, id primitive.ObjectID) (model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byEmail {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Account{}, customErrors.ErrNotFound
}

type notifierRecorder struct {
	events chan notify.Event
	err    error
}

func newNotifierRecorder() *notifierRecorder {
	return &notifierRecorder{events: make(chan notify.Event, 16)}
}

func (n *notifierRecorder) record(ev notify.Event) error {
	n.events <- ev
	return n.err
}

func (n *notifierRecorder) Registration(_ context.Context, ev notify.Event) error {
	return n.record(ev)
}
func (n *notifierRecorder) Login(_ context.Context, ev notify.Event) error { return n.record(ev) }
func (n *notifierRecorder) PasswordReset(_ context.Context, ev notify.Event) error {
	return n.record(ev)
}

func (n *notifierRecorder) wait(t *testing.T) notify.Event {
	t.Helper()
	select {
	case ev := <-n.events:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no notification dispatched")
		return notify.Event{}
	}
}

func (n *notifierRecorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case ev := <-n.events:
		t.Fatalf("unexpected notification: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

type geoStub struct{}

func (geoStub) Lookup(context.Context, string) string { return "Testland" }

/* ───────────────────────────── helpers ───────────────────────────── */

func testConfig() *config.Config {
	return &config.Config{
		TokenTTL:          time.Hour,
		Issuer:            "test",
		MinPasswordLength: 8,
		PasswordPepper:    "pepper",
	}
}

func newSvc(repo *accountRepoStub, rec *notifierRecorder) (service.AccountService, token.Issuer) {
	cfg := testConfig()
	tokens := token.New("test-secret", cfg.Issuer)
	svc := service.NewAccountService(
		repo,
		password.New(cfg.PasswordPepper),
		tokens,
		rec,
		geoStub{},
		cfg,
		validate.New(),
		zap.NewNop(),
	)
	return svc, tokens
}

/* ─────────────────────────────── tests ─────────────────────────────── */

func TestRegisterLoginCurrentFlow(t *testing.T) {
	repo := newAccountRepoStub()
	rec := newNotifierRecorder()
	svc, _ := newSvc(repo, rec)
	ctx := context.Background()

	reg, err := svc.Register(ctx, dto.RegisterDTO{
		Email:    "A@B.com",
		Password: "longenough1",
		Name:     "A",
		ClientIP: "203.0.113.7",
	})
	require.NoError(t, err)
	require.Equal(t, "a@b.com", reg.Account.Email)
	require.NotEmpty(t, reg.Token)
	require.False(t, reg.Account.ID.IsZero())
	require.NotEqual(t, "longenough1", reg.Account.PasswordHash)

	ev := rec.wait(t)
	require.Equal(t, "a@b.com", ev.Email)
	require.Equal(t, "Testland", ev.Location)

	login, err := svc.Login(ctx, dto.LoginDTO{Email: "a@b.com", Password: "longenough1"})
	require.NoError(t, err)
	require.Equal(t, reg.Account.ID, login.Account.ID)
	rec.wait(t)

	current, err := svc.CurrentAccount(ctx, login.Token)
	require.NoError(t, err)
	require.Equal(t, reg.Account.ID, current.ID)
	require.Equal(t, "a@b.com", current.Email)
	require.Equal(t, "A", current.Name)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newAccountRepoStub()
	rec := newNotifierRecorder()
	svc, _ := newSvc(repo, rec)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterDTO{Email: "a@b.com", Password: "longenough1", Name: "A"})
	require.NoError(t, err)
	rec.wait(t)

	// Case differences and surrounding whitespace still hit the same account.
	_, err = svc.Register(ctx, dto.RegisterDTO{Email: "  A@B.COM ", Password: "otherpassword2", Name: "B"})
	require.ErrorIs(t, err, customErrors.ErrAlreadyExists)

	// A taken email wins over a weak password.
	_, err = svc.Register(ctx, dto.RegisterDTO{Email: "a@b.com", Password: "x", Name: "B"})
	require.ErrorIs(t, err, customErrors.ErrAlreadyExists)
	rec.expectNone(t)
}

func TestRegister_WeakPassword(t *testing.T) {
	repo := newAccountRepoStub()
	rec := newNotifierRecorder()
	svc, _ := newSvc(repo, rec)

	_, err := svc.Register(context.Background(), dto.RegisterDTO{
		Email: "a@b.com", Password: "short", Name: "A",
	})
	require.True(t, customErrors.IsWeakPassword(err))
	rec.expectNone(t)
}

func TestRegister_InvalidEmail(t *testing.T) {
	repo := newAccountRepoStub()
	svc, _ := newSvc(repo, newNotifierRecorder())

	_, err := svc.Register(context.Background(), dto.RegisterDTO{
		Email: "not-an-email", Password: "longenough1", Name: "A",
	})
	require.True(t, customErrors.IsInvalidArgument(err))
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	repo := newAccountRepoStub()
	rec := newNotifierRecorder()
	svc, _ := newSvc(repo, rec)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterDTO{Email: "a@b.com", Password: "longenough1", Name: "A"})
	require.NoError(t, err)
	rec.wait(t)

	_, wrongPwd := svc.Login(ctx, dto.LoginDTO{Email: "a@b.com", Password: "wrongpassword"})
	_, unknown := svc.Login(ctx, dto.LoginDTO{Email: "nobody@b.com", Password: "longenough1"})

	require.ErrorIs(t, wrongPwd, customErrors.ErrInvalidCredentials)
	require.ErrorIs(t, unknown, customErrors.ErrInvalidCredentials)
	require.Equal(t, wrongPwd.Error(), unknown.Error())
	rec.expectNone(t)
}

func TestCheckEmail(t *testing.T) {
	repo := newAccountRepoStub()
	rec := newNotifierRecorder()
	svc, _ := newSvc(repo, rec)
	ctx := context.Background()

	exists, err := svc.CheckEmail(ctx, dto.CheckEmailDTO{Email: "a@b.com"})
	require.NoError(t, err)
	require.False(t, exists)

	_, err = svc.Register(ctx, dto.RegisterDTO{Email: "a@b.com", Password: "longenough1", Name: "A"})
	require.NoError(t, err)
	rec.wait(t)

	exists, err = svc.CheckEmail(ctx, dto.CheckEmailDTO{Email: "A@B.com"})
	require.NoError(t, err)
	require.True(t, exists)
	rec.expectNone(t)
}

func TestRequestPasswordReset_AlwaysSucceeds(t *testing.T) {
	repo := newAccountRepoStub()
	rec := newNotifierRecorder()
	svc, _ := newSvc(repo, rec)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterDTO{Email: "a@b.com", Password: "longenough1", Name: "A"})
	require.NoError(t, err)
	rec.wait(t)

	require.NoError(t, svc.RequestPasswordReset(ctx, dto.ForgotPasswordDTO{Email: "a@b.com"}))
	ev := rec.wait(t)
	require.Equal(t, "a@b.com", ev.Email)

	require.NoError(t, svc.RequestPasswordReset(ctx, dto.ForgotPasswordDTO{Email: "nobody@b.com"}))
	rec.expectNone(t)
}

func TestCurrentAccount_Unauthorized(t *testing.T) {
	repo := newAccountRepoStub()
	rec := newNotifierRecorder()
	svc, tokens := newSvc(repo, rec)
	ctx := context.Background()

	_, err := svc.CurrentAccount(ctx, "")
	require.ErrorIs(t, err, customErrors.ErrInvalidToken)

	_, err = svc.CurrentAccount(ctx, "garbage.token.here")
	require.ErrorIs(t, err, customErrors.ErrInvalidToken)

	expired, _, err := tokens.Issue(primitive.NewObjectID().Hex(), "a@b.com", -time.Minute)
	require.NoError(t, err)
	_, err = svc.CurrentAccount(ctx, expired)
	require.ErrorIs(t, err, customErrors.ErrInvalidToken)

	// Valid token whose subject no longer exists in the store.
	orphan, _, err := tokens.Issue(primitive.NewObjectID().Hex(), "gone@b.com", time.Minute)
	require.NoError(t, err)
	_, err = svc.CurrentAccount(ctx, orphan)
	require.ErrorIs(t, err, customErrors.ErrInvalidToken)
}

func TestRegister_NotifierFailureDoesNotFailRequest(t *testing.T) {
	repo := newAccountRepoStub()
	rec := newNotifierRecorder()
	rec.err = errors.New("sink down")
	svc, _ := newSvc(repo, rec)

	res, err := svc.Register(context.Background(), dto.RegisterDTO{
		Email: "a@b.com", Password: "longenough1", Name: "A",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	rec.wait(t)
}

func TestRegister_StorageFailure(t *testing.T) {
	repo := newAccountRepoStub()
	repo.failWith = errors.New("connection reset")
	svc, _ := newSvc(repo, newNotifierRecorder())

	_, err := svc.Register(context.Background(), dto.RegisterDTO{
		Email: "a@b.com", Password: "longenough1", Name: "A",
	})
	require.True(t, customErrors.IsInternal(err))
}
