package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 14 * 24 * time.Hour
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Auth struct {
	Secret string
}

func SetupAuth(secret string) Auth {
	return Auth{Secret: secret}
}

// IssueTokenPair mints an access/refresh pair for the user. The refresh
// token carries a fresh jti; callers must persist a session row under
// that jti before handing the pair out, otherwise the refresh exchange
// will treat the token as revoked.
func (a Auth) IssueTokenPair(user *domain.User) (dto.TokenPair, error) {
	if user == nil || user.ID == 0 {
		return dto.TokenPair{}, errors.New("required inputs are missing to generate token")
	}

	now := time.Now()
	jti := uuid.NewString()

	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(AccessTokenTTL).Unix(),
	})
	accessStr, err := access.SignedString([]byte(a.Secret))
	if err != nil {
		return dto.TokenPair{}, errors.New("unable to sign the access token")
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"jti": jti,
		"iat": now.Unix(),
		"exp": now.Add(RefreshTokenTTL).Unix(),
	})
	refreshStr, err := refresh.SignedString([]byte(a.Secret))
	if err != nil {
		return dto.TokenPair{}, errors.New("unable to sign the refresh token")
	}

	return dto.TokenPair{
		AccessToken:  accessStr,
		RefreshToken: refreshStr,
		JTI:          jti,
	}, nil
}

// VerifyAccessToken accepts either "Bearer <token>" or a bare token.
func (a Auth) VerifyAccessToken(tokenString string) (dto.AuthClaims, error) {
	claims, err := a.parse(tokenString)
	if err != nil {
		return dto.AuthClaims{}, err
	}

	sub, ok := asUint(claims["sub"])
	if !ok {
		return dto.AuthClaims{}, ErrTokenInvalid
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)

	return dto.AuthClaims{
		UserID: sub,
		Email:  email,
		Role:   role,
		Expiry: int64(exp),
		Iat:    int64(iat),
	}, nil
}

func (a Auth) VerifyRefreshToken(tokenString string) (dto.RefreshClaims, error) {
	claims, err := a.parse(tokenString)
	if err != nil {
		return dto.RefreshClaims{}, err
	}

	sub, ok := asUint(claims["sub"])
	if !ok {
		return dto.RefreshClaims{}, ErrTokenInvalid
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return dto.RefreshClaims{}, ErrTokenInvalid
	}
	exp, _ := claims["exp"].(float64)

	return dto.RefreshClaims{
		UserID: sub,
		JTI:    jti,
		Expiry: int64(exp),
	}, nil
}

func (a Auth) parse(tokenString string) (jwt.MapClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	// support both:
	// - "Bearer <token>"
	// - "<token>"
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return nil, ErrTokenInvalid
		}
		tokenString = strings.TrimSpace(parts[1])
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (a Auth) GetCurrentUser(ctx *fiber.Ctx) (dto.AuthClaims, error) {
	u := ctx.Locals("user")
	claims, ok := u.(dto.AuthClaims)
	if !ok {
		return dto.AuthClaims{}, errors.New("missing auth user in context")
	}
	return claims, nil
}

func (a Auth) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New("failed to hash password")
	}
	return string(hashed), nil
}

func (a Auth) VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}

func asUint(v interface{}) (uint, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return uint(f), true
}
