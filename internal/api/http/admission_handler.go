package http

import (
	"encoding/json"
	"net/http"
	"time"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
	"teamspace-backend/internal/service"

	"github.com/gorilla/mux"
)

// AdmissionHandler serves invitation link management and redemption.
type AdmissionHandler struct {
	admissionSvc service.AdmissionService
	permSvc      service.PermissionService
	projects     repository.ProjectDirectory
}

func NewAdmissionHandler(admissionSvc service.AdmissionService, permSvc service.PermissionService, projects repository.ProjectDirectory) *AdmissionHandler {
	return &AdmissionHandler{admissionSvc: admissionSvc, permSvc: permSvc, projects: projects}
}

func (h *AdmissionHandler) requireProject(w http.ResponseWriter, r *http.Request) (int32, bool) {
	projectID, ok := pathID(r, "projectID")
	if !ok {
		writeErrorStatus(w, http.StatusBadRequest, "invalid project id")
		return 0, false
	}
	project, err := h.projects.GetProject(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return 0, false
	}
	if project == nil {
		writeErrorStatus(w, http.StatusNotFound, "project not found")
		return 0, false
	}
	return projectID, true
}

type openAdmissionsRequest struct {
	Role      string     `json:"role,omitempty"`
	MaxUses   *int32     `json:"max_uses,omitempty"`
	ExpiresOn *time.Time `json:"expires_on,omitempty"`
}

func (h *AdmissionHandler) OpenAdmissions(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	var req openAdmissionsRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		writeErrorStatus(w, http.StatusBadRequest, "max_uses must be positive")
		return
	}
	if req.ExpiresOn != nil && !req.ExpiresOn.After(time.Now()) {
		writeErrorStatus(w, http.StatusBadRequest, "expires_on must be in the future")
		return
	}

	opts := service.OpenAdmissionsOptions{
		Role:      domain.Role(req.Role),
		MaxUses:   req.MaxUses,
		ExpiresOn: req.ExpiresOn,
	}
	link, err := h.admissionSvc.OpenAdmissions(r.Context(), projectID, userID, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *AdmissionHandler) CloseAdmissions(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	if err := h.admissionSvc.CloseAdmissions(r.Context(), projectID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdmissionHandler) GetActiveLink(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	if err := h.requireAdmin(w, r, projectID, userID); err != nil {
		return
	}

	link, err := h.admissionSvc.GetActiveInvitationLink(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if link == nil {
		writeErrorStatus(w, http.StatusNotFound, "admissions are closed")
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *AdmissionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	if err := h.requireAdmin(w, r, projectID, userID); err != nil {
		return
	}

	stats, err := h.admissionSvc.GetInvitationStats(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type shareInvitationRequest struct {
	Email string `json:"email"`
}

func (h *AdmissionHandler) ShareInvitation(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	var req shareInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeErrorStatus(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.admissionSvc.ShareInvitation(r.Context(), projectID, userID, req.Email); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// invitePreview is what an invitee sees before committing to join. The
// token is never echoed back and the project is only named, not exposed.
type invitePreview struct {
	ProjectID     int32      `json:"project_id"`
	ProjectName   string     `json:"project_name,omitempty"`
	Role          domain.Role `json:"role"`
	ExpiresOn     *time.Time `json:"expires_on,omitempty"`
	RemainingUses *int32     `json:"remaining_uses,omitempty"`
}

// ValidateToken is the public, read-only preview endpoint reached from
// the invite URL.
func (h *AdmissionHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	link, err := h.admissionSvc.ValidateToken(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	preview := invitePreview{
		ProjectID:     link.ProjectID,
		Role:          link.Role,
		ExpiresOn:     link.ExpiresOn,
		RemainingUses: link.RemainingUses(),
	}
	if project, err := h.projects.GetProject(r.Context(), link.ProjectID); err == nil && project != nil {
		preview.ProjectName = project.Name
	}
	writeJSON(w, http.StatusOK, preview)
}

func (h *AdmissionHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	token := mux.Vars(r)["token"]

	result, err := h.admissionSvc.AcceptInvitation(r.Context(), token, userID, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if result.IsExistingMember {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (h *AdmissionHandler) requireAdmin(w http.ResponseWriter, r *http.Request, projectID, userID int32) error {
	allowed, err := h.permSvc.CheckPermission(r.Context(), projectID, userID, domain.RoleAdmin)
	if err != nil {
		writeError(w, err)
		return err
	}
	if !allowed {
		writeErrorStatus(w, http.StatusForbidden, "insufficient permissions")
		return domain.ErrInsufficientPermissions
	}
	return nil
}
