package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kundi/core"
	"github.com/trezcool/kundi/core/supervisor"
)

const (
	authTokenHeader  = "x-auth-token"
	contextClaimsKey = "supervisorToken"
)

// Claims represents the authorization claims transmitted via a JWT.
// Subject carries the supervisor's employee ID.
type Claims struct {
	jwt.StandardClaims
	Name string `json:"name,omitempty"`
}

func GetSupervisorClaims(sup supervisor.Supervisor, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   sup.EmpID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name: sup.Name,
	}
}

// GenerateToken generates a signed JWT token string representing the supervisor Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func authenticate(ctx context.Context, login supervisor.Login, svc *supervisor.Service, conf *core.Config) (*Claims, error) {
	sup, err := svc.GetByEmail(ctx, login.Email)
	if err != nil {
		if errors.Cause(err) == supervisor.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding supervisor by email")
	}
	if err = sup.CheckPassword(login.Password); err != nil {
		return nil, errAuthenticationFailed
	}
	return GetSupervisorClaims(sup, conf), nil
}

// authMiddleware authenticates requests off a JWT in the "x-auth-token"
// header and stores the parsed Claims in the echo.Context.
func authMiddleware(conf *core.Config) echo.MiddlewareFunc {
	key := []byte(conf.SecretKey)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			raw := ctx.Request().Header.Get(authTokenHeader)
			if raw == "" {
				return errTokenMissing
			}
			token, err := jwt.ParseWithClaims(raw, new(Claims), func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				return errTokenInvalid
			}
			ctx.Set(contextClaimsKey, token.Claims.(*Claims))
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return *claims, nil
	}
	return Claims{}, errTokenMissing
}
