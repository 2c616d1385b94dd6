package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"quadralivre/internal/apperrors"
	"quadralivre/internal/config"
	"quadralivre/internal/middleware"
	"quadralivre/internal/models"
	"quadralivre/internal/repository"
	"quadralivre/internal/services"
)

type AuthHandler struct {
	users    repository.UserRepository
	resets   repository.PasswordResetRepository
	sessions repository.SessionRepository
	mailer   services.EmailSender
	cfg      *config.Config
	v        *validator.Validate
}

func NewAuthHandler(db *sql.DB, cfg *config.Config, mailer services.EmailSender) *AuthHandler {
	return &AuthHandler{
		users:    repository.NewUserRepository(db),
		resets:   repository.NewPasswordResetRepository(db),
		sessions: repository.NewSessionRepository(db),
		mailer:   mailer,
		cfg:      cfg,
		v:        validator.New(),
	}
}

// issueSession signs a bearer token and records its jti so logout can
// revoke it.
func (h *AuthHandler) issueSession(r *http.Request, u *models.User) (*models.AuthResponse, error) {
	expiresIn := h.cfg.JWTExpiresInSeconds
	if expiresIn <= 0 {
		expiresIn = 86400
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: now.Add(time.Duration(expiresIn) * time.Second),
		CreatedAt: now,
	}
	if err := h.sessions.Create(r.Context(), session); err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": string(u.Role),
		"jti":  session.ID,
		"iat":  now.Unix(),
		"exp":  session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{User: u, AccessToken: signed, ExpiresIn: expiresIn}, nil
}

// @Tags Auth
// @Summary Register an account
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Corpo da requisição inválido")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	role := models.RoleUser
	if req.Role != "" {
		if !models.ValidRole(req.Role) || models.Role(req.Role) == models.RoleAdmin {
			writeJSONError(w, http.StatusBadRequest, "invalid_role", "Perfil de usuário inválido")
			return
		}
		role = models.Role(req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeAppError(w, apperrors.Internal(err))
		return
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Create(r.Context(), u); err != nil {
		writeAppError(w, err)
		return
	}

	resp, err := h.issueSession(r, u)
	if err != nil {
		writeAppError(w, apperrors.Internal(err))
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// @Tags Auth
// @Summary Log in
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Corpo da requisição inválido")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Email ou senha inválidos")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Email ou senha inválidos")
		return
	}

	resp, err := h.issueSession(r, u)
	if err != nil {
		writeAppError(w, apperrors.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the token's session. It parses the bearer token
// itself instead of sitting behind JWTAuth: a second logout with the
// same (now-revoked) token must still succeed.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	jti, err := h.tokenSessionID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if err := h.sessions.Revoke(r.Context(), jti); err != nil {
		writeAppError(w, apperrors.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *AuthHandler) tokenSessionID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.Auth("auth_error", "Credencial ausente")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || token == nil || !token.Valid {
		return "", apperrors.Auth("auth_error", "Credencial inválida")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.Auth("auth_error", "Credencial inválida")
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return "", apperrors.Auth("auth_error", "Credencial inválida")
	}
	return jti, nil
}

// @Tags Auth
// @Summary Current identity
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "auth_error", "Sessão inválida")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ForgotPassword always answers 200 with a generic body so the
// endpoint cannot be used to probe which emails are registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Corpo da requisição inválido")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	rawToken, tokenHash, err := generateResetToken()
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	now := time.Now().UTC()
	prt := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(30 * time.Minute),
		CreatedAt: now,
	}
	_ = h.resets.Create(r.Context(), prt)

	subject := "Redefinição de senha"
	body := "Use este token para redefinir sua senha:\n\n" + rawToken + "\n\nO token expira em 30 minutos."
	_ = h.mailer.Send(u.Email, subject, body)

	resp := map[string]any{"ok": true}
	if h.cfg.AuthReturnResetToken {
		resp["token"] = rawToken
		resp["expires_in_seconds"] = int64(1800)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Corpo da requisição inválido")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if !strongPassword(req.NewPassword) {
		writeJSONError(w, http.StatusBadRequest, "weak_password",
			"Senha deve ter no mínimo 8 caracteres com maiúscula, minúscula, número e símbolo")
		return
	}

	hash := sha256.Sum256([]byte(req.Token))
	tokenHash := hex.EncodeToString(hash[:])

	token, err := h.resets.GetValidByTokenHash(r.Context(), tokenHash)
	if err != nil {
		writeAppError(w, err)
		return
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeAppError(w, apperrors.Internal(err))
		return
	}

	if err := h.users.UpdatePasswordHash(r.Context(), token.UserID, string(pwHash)); err != nil {
		writeAppError(w, err)
		return
	}

	_ = h.resets.MarkUsed(r.Context(), token.ID, time.Now().UTC())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Senha redefinida com sucesso"})
}

func generateResetToken() (rawToken string, tokenHash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	rawToken = hex.EncodeToString(b)
	h := sha256.Sum256([]byte(rawToken))
	tokenHash = hex.EncodeToString(h[:])
	return rawToken, tokenHash, nil
}

// strongPassword enforces the reset policy: at least 8 chars covering
// upper, lower, digit and symbol.
func strongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
