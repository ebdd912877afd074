package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	commonerrors "github.com/smiileyface/ezpunishments/internal/common/errors"
	commonhttp "github.com/smiileyface/ezpunishments/internal/common/http"
	"github.com/smiileyface/ezpunishments/internal/common/logger"
	punishmentdomain "github.com/smiileyface/ezpunishments/internal/punishment/domain"
	"github.com/smiileyface/ezpunishments/internal/punishment/service"
)

type createPunishmentRequest struct {
	MCUsername string `json:"mc_username" validate:"required,max=16"`
	Reason     string `json:"reason" validate:"required"`
	Proof      string `json:"proof"`
	PunishedBy string `json:"punished_by" validate:"required,max=16"`
	Expires    string `json:"expires" validate:"required"`
}

type updatePunishmentRequest struct {
	Reason    *string `json:"reason"`
	Proof     *string `json:"proof"`
	IsActive  *bool   `json:"is_active"`
	RemovedBy *string `json:"removed_by"`
	Expires   *string `json:"expires"`
}

type punishmentResponse struct {
	ID             int64     `json:"id"`
	MCUsername     string    `json:"mc_username"`
	MCUUID         string    `json:"mc_uuid"`
	Reason         string    `json:"reason"`
	Proof          string    `json:"proof"`
	PunishedBy     string    `json:"punished_by"`
	PunishedByUUID string    `json:"punished_by_uuid"`
	RemovedBy      *string   `json:"removed_by"`
	RemovedByUUID  *string   `json:"removed_by_uuid"`
	IsActive       bool      `json:"is_active"`
	Expires        time.Time `json:"expires"`
	DatePunished   time.Time `json:"date_punished"`
	LastUpdated    time.Time `json:"last_updated"`
}

var errInvalidExpires = commonerrors.NewValidationError(
	"INVALID_EXPIRES",
	"expires must be a valid timestamp",
)

type Handler struct {
	punishments *service.Service
	log         *logger.Logger
}

// NewHandler wires the punishment endpoints; every route requires an
// authenticated caller.
func NewHandler(punishments *service.Service, authMW func(http.Handler) http.Handler, log *logger.Logger) http.Handler {
	h := &Handler{punishments: punishments, log: log}
	mux := http.NewServeMux()
	mux.Handle("/punishment/punishments/", authMW(http.HandlerFunc(h.route)))
	return mux
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/punishment/punishments/")

	if rest == "" {
		h.collection(w, r)
		return
	}

	idPart := strings.TrimSuffix(rest, "/")
	if idPart == "" || strings.Contains(idPart, "/") {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil)
		return
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil)
		return
	}

	h.detail(w, r, id)
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil)
	}
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPatch:
		h.update(w, r, id)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := punishmentdomain.Filter{
		MCUsernames: parseNameList(r.URL.Query().Get("mc_username")),
		PunishedBy:  parseNameList(r.URL.Query().Get("punished_by")),
	}

	punishments, err := h.punishments.List(r.Context(), filter)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	responses := make([]punishmentResponse, 0, len(punishments))
	for _, p := range punishments {
		responses = append(responses, toResponse(p))
	}

	commonhttp.WriteJSON(w, http.StatusOK, responses)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPunishmentRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("create punishment failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil)
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	expires, err := parseTimestamp(req.Expires)
	if err != nil {
		commonhttp.HandleError(w, r, errInvalidExpires.WithCause(err), h.log)
		return
	}

	p, err := h.punishments.Create(r.Context(), service.CreateInput{
		MCUsername: req.MCUsername,
		Reason:     req.Reason,
		Proof:      req.Proof,
		PunishedBy: req.PunishedBy,
		Expires:    expires,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, id int64) {
	p, err := h.punishments.Get(r.Context(), id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var req updatePunishmentRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("update punishment failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil)
		return
	}

	input := service.UpdateInput{
		Reason:    req.Reason,
		Proof:     req.Proof,
		IsActive:  req.IsActive,
		RemovedBy: req.RemovedBy,
	}

	if req.Expires != nil {
		expires, err := parseTimestamp(*req.Expires)
		if err != nil {
			commonhttp.HandleError(w, r, errInvalidExpires.WithCause(err), h.log)
			return
		}
		input.Expires = &expires
	}

	p, err := h.punishments.Update(r.Context(), id, input)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toResponse(p))
}

func toResponse(p punishmentdomain.Punishment) punishmentResponse {
	return punishmentResponse{
		ID:             p.ID,
		MCUsername:     p.MCUsername,
		MCUUID:         p.MCUUID,
		Reason:         p.Reason,
		Proof:          p.Proof,
		PunishedBy:     p.PunishedBy,
		PunishedByUUID: p.PunishedByUUID,
		RemovedBy:      p.RemovedBy,
		RemovedByUUID:  p.RemovedByUUID,
		IsActive:       p.IsActive,
		Expires:        p.Expires,
		DatePunished:   p.DatePunished,
		LastUpdated:    p.LastUpdated,
	}
}

// parseNameList splits a comma-delimited query value into a name set.
func parseNameList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

var naiveTimestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp accepts RFC 3339; a timestamp without a zone offset is
// interpreted in the server's local zone.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	var lastErr error
	for _, layout := range naiveTimestampLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
