package server

import (
	"strconv"
	"time"

	"ladle/internal/middleware"
	"ladle/internal/models"
	"ladle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered", "new_user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Token exchanges credentials for a signed JWT. Bad credentials come back as
// a 400 that does not reveal which field was wrong.
func (s *Server) Token(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "UNAUTHORIZED" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to authenticate with provided credentials"))
		}
		return respondServiceError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "token generation failed", "error", err.Error())
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"token": token})
}

// Logout blacklists the presented token's JTI until its natural expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenString := authHeader[7:]
		token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
		if err == nil {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				jti, _ := claims["jti"].(string)
				exp, expOk := claims["exp"].(float64)
				if jti != "" && expOk && s.redis != nil {
					ttl := time.Until(time.Unix(int64(exp), 0))
					if ttl > 0 {
						if err := s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl).Err(); err != nil {
							middleware.Logger.WarnContext(c.UserContext(),
								"failed to blacklist token", "error", err.Error())
						}
					}
				}
			}
		}
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (s *Server) generateToken(userID uint) (string, error) {
	ttl := time.Duration(s.config.TokenTTLHours) * time.Hour
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
