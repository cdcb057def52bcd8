package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/account"
)

var (
	contextTokenKey   = "accountToken"
	contextAccountKey = "account"
)

// authenticator issues and refreshes tokens.
type authenticator struct {
	conf      *core.Config
	svc       *account.Service
	jwtConfig middleware.JWTConfig
}

func newAuthenticator(conf *core.Config, svc *account.Service) *authenticator {
	return &authenticator{
		conf: conf,
		svc:  svc,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(account.Claims),
		},
	}
}

func (a *authenticator) claims(acc account.Account, origIat ...int64) *account.Claims {
	return account.GetAccountClaims(acc, a.conf.AppName, a.conf.Server.JWTExpirationDelta, origIat...)
}

func (a *authenticator) authenticate(ctx context.Context, uname, pwd string) (*account.Claims, error) {
	acc, err := a.svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err == account.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding account by username or email")
	}
	if err = acc.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !acc.IsActive {
		return nil, errAccountDeactivated
	}
	if err = a.svc.SetLastLogin(ctx, acc.ID); err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return a.claims(acc), nil
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func (a *authenticator) GenerateToken(claims *account.Claims) (string, error) {
	method := jwt.GetSigningMethod(a.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(a.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (a *authenticator) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	acc, err := getContextAccount(ctx, a.svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context account")
	}

	// check if account is still active
	if !acc.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OriginalIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := a.GenerateToken(a.claims(acc, claims.OriginalIssuedAt))
	return token, errors.Wrap(err, "generating token")
}

func getContextClaims(ctx echo.Context) (account.Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*account.Claims); ok {
			return *claims, nil
		}
	}
	return account.Claims{}, errUnauthorized
}

func getContextAccount(ctx echo.Context, svc *account.Service, clms ...account.Claims) (account.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acc, nil
	}

	var claims account.Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return account.Account{}, errors.Wrap(err, "getting context claims")
		}
	}

	acc, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if err == account.ErrNotFound {
			return account.Account{}, errUnauthorized
		}
		return account.Account{}, errors.Wrap(err, "finding account by ID")
	}
	ctx.Set(contextAccountKey, acc)
	return acc, nil
}
