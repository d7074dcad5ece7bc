package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/ChristopherDeLaRosa/academia/core"
	"github.com/ChristopherDeLaRosa/academia/core/user"
)

const jwtContextKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
// The identity provider upstream is trusted: handlers only read
// (callerID, role, studentID) from here and never hit the user store.
type Claims struct {
	jwt.StandardClaims
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	StudentID string `json:"student_id,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

// GetUserClaims builds the claims encoded in tokens issued for usr.
func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username:  usr.Username,
		Role:      usr.Role.String(),
		StudentID: usr.StudentID,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextCaller maps the verified claims to the domain Caller identity.
func getContextCaller(ctx echo.Context) (user.Caller, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.Caller{}, err
	}
	role, ok := user.ParseRole(claims.Role)
	if !ok {
		return user.Caller{}, errHttpForbidden
	}
	return user.Caller{
		ID:        claims.Subject,
		Role:      role,
		StudentID: claims.StudentID,
	}, nil
}
