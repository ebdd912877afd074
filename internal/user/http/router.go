package http

import (
	"net/http"

	commonhttp "github.com/smiileyface/ezpunishments/internal/common/http"
	"github.com/smiileyface/ezpunishments/internal/common/jwtverify"
	"github.com/smiileyface/ezpunishments/internal/common/logger"
	userdomain "github.com/smiileyface/ezpunishments/internal/user/domain"
	"github.com/smiileyface/ezpunishments/internal/user/service"
)

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=16"`
	Password string `json:"password" validate:"required,min=5"`
}

type tokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Password string `json:"password" validate:"required,min=5"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	MCUUID   string `json:"mc_uuid"`
}

type profileResponse struct {
	Username string `json:"username"`
	MCUUID   string `json:"mc_uuid"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	users *service.Service
	log   *logger.Logger
}

// NewHandler wires the account endpoints. Creation and token issuance are
// public; the profile endpoint sits behind the auth middleware.
func NewHandler(users *service.Service, authMW func(http.Handler) http.Handler, log *logger.Logger) http.Handler {
	h := &Handler{users: users, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/user/create/", h.create)
	mux.HandleFunc("/user/token/", h.token)
	mux.Handle("/user/me/", authMW(http.HandlerFunc(h.me)))
	return mux
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/user/create/" {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil)
		return
	}
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil)
		return
	}

	var req createUserRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("create user failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil)
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, userResponse{
		ID:       string(user.ID),
		Username: user.Username,
		MCUUID:   user.MCUUID,
	})
}

func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/user/token/" {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil)
		return
	}
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil)
		return
	}

	var req tokenRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("token failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil)
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	token, err := h.users.IssueToken(r.Context(), req.Username, req.Password)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/user/me/" {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil)
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.profile(w, r, claims)
	case http.MethodPatch:
		h.updateProfile(w, r, claims)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil)
	}
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request, claims jwtverify.Claims) {
	user, err := h.users.Profile(r.Context(), userdomain.ID(claims.UserID))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, profileResponse{
		Username: user.Username,
		MCUUID:   user.MCUUID,
	})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request, claims jwtverify.Claims) {
	var req updateProfileRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("update profile failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil)
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	if err := h.users.ChangePassword(r.Context(), userdomain.ID(claims.UserID), req.Password); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	user, err := h.users.Profile(r.Context(), userdomain.ID(claims.UserID))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, profileResponse{
		Username: user.Username,
		MCUUID:   user.MCUUID,
	})
}
