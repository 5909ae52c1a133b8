package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pantry/internal/identity/federation"
	"pantry/internal/identity/models"
	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
	"pantry/pkg/platform/httputil"
	"pantry/pkg/requestcontext"
)

// Service defines the interface for identity operations.
type Service interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	ResolveOrCreateByEmail(ctx context.Context, address string) (*models.User, error)
}

// TokenIssuer mints and revokes the access tokens handed out at login.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, username string) (string, error)
	RevokeToken(ctx context.Context, jti string) error
	TTL() time.Duration
}

// Handler wires the auth endpoints to the identity service.
type Handler struct {
	service  Service
	tokens   TokenIssuer
	verifier federation.TokenVerifier
	logger   *slog.Logger
}

// New constructs an identity handler with its dependencies.
func New(service Service, tokens TokenIssuer, verifier federation.TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger,
	}
}

// Register mounts the unauthenticated auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/session-login", h.HandleSessionLogin)
}

// RegisterProtected mounts the auth endpoints that require a valid token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
}

// HandleRegister handles POST /auth/register requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Register(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestID,
			"username", req.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"user_id", user.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromUser(user))
}

// HandleLogin handles POST /auth/login requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"username", req.Username,
		)
		httputil.WriteError(w, err)
		return
	}

	h.writeToken(w, ctx, requestID, user)
}

// HandleSessionLogin handles POST /auth/session-login requests. The ID token
// comes from an external identity provider; a verified email resolves to an
// existing account or provisions a new one.
func (h *Handler) HandleSessionLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SessionLoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	identity, err := h.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		h.logger.WarnContext(ctx, "identity token rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.ResolveOrCreateByEmail(ctx, identity.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "federated login failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.writeToken(w, ctx, requestID, user)
}

// HandleLogout handles POST /auth/logout requests. The presented token's JTI
// goes onto the revocation list for its remaining lifetime.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	jti := requestcontext.TokenID(ctx)
	if jti == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.tokens.RevokeToken(ctx, jti); err != nil {
		h.logger.ErrorContext(ctx, "token revocation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log out"))
		return
	}

	h.logger.InfoContext(ctx, "user logged out",
		"request_id", requestID,
		"user_id", requestcontext.UserID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeToken(w http.ResponseWriter, ctx context.Context, requestID string, user *models.User) {
	token, err := h.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "token generation failed",
			"request_id", requestID,
			"user_id", user.ID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token"))
		return
	}

	h.logger.InfoContext(ctx, "user logged in",
		"request_id", requestID,
		"user_id", user.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
		User:        FromUser(user),
	})
}
