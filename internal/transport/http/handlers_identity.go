package httptransport

import (
	"net/http"

	"github.com/tahsin/salamilink/internal/apperrors"
	"github.com/tahsin/salamilink/internal/middleware"
	"github.com/tahsin/salamilink/internal/models"
	"github.com/tahsin/salamilink/internal/service"
)

type identityResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName"`
}

type sessionResponse struct {
	Identity identityResponse `json:"identity"`
	Token    string           `json:"token,omitempty"`
}

func toIdentityResponse(identity *models.Identity) identityResponse {
	return identityResponse{
		ID:          identity.ID,
		Kind:        string(identity.Kind),
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	}
}

func toSessionResponse(session *service.Session) sessionResponse {
	return sessionResponse{
		Identity: toIdentityResponse(session.Identity),
		Token:    session.Token,
	}
}

// currentIdentity resolves the session identity, or nil when the request
// carries no valid session.
func (h *Handler) currentIdentity(r *http.Request) (*models.Identity, error) {
	return h.identities.Resolve(r.Context(), middleware.GetIdentityID(r.Context()))
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleGetSession returns the current identity or 401.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	identity, err := h.currentIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if identity == nil {
		writeError(w, apperrors.New(apperrors.CodeUnauthorized, "no session"))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Identity: toIdentityResponse(identity)})
}

// handleCreateAnonymous bootstraps an anonymous identity for a first-time
// visitor. Idempotent for anonymous callers; permanent callers get
// already_authenticated and should reuse their session.
func (h *Handler) handleCreateAnonymous(w http.ResponseWriter, r *http.Request) {
	current, err := h.currentIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := h.identities.CreateAnonymous(r.Context(), current)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// handleRegister signs up a permanent identity; from an anonymous session
// this upgrades it and takes over its invoices.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[registerRequest](w, r)
	if !ok {
		return
	}

	current, err := h.currentIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := h.identities.Register(r.Context(), current, req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// handleLogin signs in an existing account; from an anonymous session this
// moves the session's invoices to the signed-in account.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[loginRequest](w, r)
	if !ok {
		return
	}

	current, err := h.currentIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := h.identities.Login(r.Context(), current, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}
