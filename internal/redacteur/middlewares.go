// Middleware сервера: идентификация автора по JWT и загрузка документа из пути запроса.
//
// Экраны входа и выдача токенов находятся вне сервиса: токен подписывается
// общим секретом SECRET_KEY и содержит user_id, name и avatar.
package redacteur

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/apierrors"
	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

const TokenExpiresPeriod = time.Hour * 12

// Author - автор запроса из токена.
type Author struct {
	Id     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
}

type AuthorClaims struct {
	UserId string  `json:"user_id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

type AuthContext struct {
	echo.Context
	User *Author
}

type AuthConfig struct {
	Secret  []byte
	Skipper middleware.Skipper
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "Redacteur")
		return next(c)
	}
}

func AuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}

			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			// Браузерный websocket не может передать заголовок Authorization
			schema, tokenString, ok := strings.Cut(c.Request().Header.Get("Sec-WebSocket-Protocol"), ",")
			if !ok {
				schema, tokenString, ok = strings.Cut(c.Request().Header.Get("Authorization"), " ")
			}
			if !ok {
				cookie, err := c.Cookie("access_token")
				if err != nil || cookie.Value == "" {
					return EErrorDefined(c, apierrors.ErrAccessTokenRequired)
				}
				schema, tokenString = "Bearer", cookie.Value
			}
			if !strings.EqualFold(strings.TrimSpace(schema), "Bearer") {
				return EErrorDefined(c, apierrors.ErrTokenInvalid)
			}

			author, err := ParseAuthorToken(config.Secret, strings.TrimSpace(tokenString))
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return EErrorDefined(c, apierrors.ErrTokenExpired)
				}
				return EErrorDefined(c, apierrors.ErrTokenInvalid)
			}

			return next(AuthContext{c, author})
		}
	}
}

// ParseAuthorToken проверяет подпись токена и возвращает автора.
func ParseAuthorToken(secret []byte, tokenString string) (*Author, error) {
	var claims AuthorClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.UserId == "" {
		return nil, errors.New("token has no user_id")
	}
	return &Author{Id: claims.UserId, Name: claims.Name, Avatar: claims.Avatar}, nil
}

// GenAuthorToken выпускает токен автора. Используется для разработки и тестов.
func GenAuthorToken(secret []byte, author Author, ttl time.Duration) (string, error) {
	u, _ := uuid.NewV4()
	now := time.Now()
	claims := AuthorClaims{
		UserId: author.Id,
		Name:   author.Name,
		Avatar: author.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        fmt.Sprintf("%x", u),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

type DocContext struct {
	AuthContext
	Doc dao.Doc
}

func (s *Services) DocMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		docId, err := uuid.FromString(c.Param("docId"))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrInvalidID)
		}

		var doc dao.Doc
		if err := s.db.Where("id = ?", docId).First(&doc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return EErrorDefined(c, apierrors.ErrDocNotFound)
			}
			return EError(c, err)
		}

		return next(DocContext{c.(AuthContext), doc})
	}
}
