package http

import (
	"net/http"
	"strconv"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
	"teamspace-backend/internal/service"
)

// AuditHandler serves the project audit trail to project admins.
type AuditHandler struct {
	auditSvc service.AuditService
	permSvc  service.PermissionService
	projects repository.ProjectDirectory
}

func NewAuditHandler(auditSvc service.AuditService, permSvc service.PermissionService, projects repository.ProjectDirectory) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc, permSvc: permSvc, projects: projects}
}

func queryInt32(r *http.Request, name string) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 32)
	if err != nil {
		return 0
	}
	return int32(v)
}

func (h *AuditHandler) authorize(w http.ResponseWriter, r *http.Request) (int32, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return 0, false
	}
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

	allowed, err := h.permSvc.CheckPermission(r.Context(), projectID, userID, domain.RoleAdmin)
	if err != nil {
		writeError(w, err)
		return 0, false
	}
	if !allowed {
		writeErrorStatus(w, http.StatusForbidden, "insufficient permissions")
		return 0, false
	}
	return projectID, true
}

func (h *AuditHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	entries, err := h.auditSvc.GetAuditTrail(r.Context(), projectID, queryInt32(r, "limit"), queryInt32(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AuditHandler) GetJoinHistory(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	records, err := h.auditSvc.GetJoinHistory(r.Context(), projectID, queryInt32(r, "limit"), queryInt32(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *AuditHandler) GetRoleChangeHistory(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	records, err := h.auditSvc.GetRoleChangeHistory(r.Context(), projectID, queryInt32(r, "limit"), queryInt32(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
