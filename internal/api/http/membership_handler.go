package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/repository"
	"teamspace-backend/internal/service"

	"github.com/gorilla/mux"
)

// MembershipHandler serves the member management surface of a project.
type MembershipHandler struct {
	memberSvc service.MembershipService
	permSvc   service.PermissionService
	projects  repository.ProjectDirectory
}

func NewMembershipHandler(memberSvc service.MembershipService, permSvc service.PermissionService, projects repository.ProjectDirectory) *MembershipHandler {
	return &MembershipHandler{memberSvc: memberSvc, permSvc: permSvc, projects: projects}
}

func pathID(r *http.Request, name string) (int32, bool) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

// requireProject answers the 404-before-403 question: an unknown project
// is reported as not found before any permission failure could leak its
// existence.
func (h *MembershipHandler) requireProject(w http.ResponseWriter, r *http.Request) (int32, bool) {
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

func (h *MembershipHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	allowed, err := h.permSvc.CheckPermission(r.Context(), projectID, userID, domain.RoleViewer)
	if err != nil {
		writeError(w, err)
		return
	}
	if !allowed {
		writeErrorStatus(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	members, err := h.memberSvc.ListMembers(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type addMemberRequest struct {
	UserID int32  `json:"user_id"`
	Role   string `json:"role"`
}

func (h *MembershipHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	// Direct adds are an admin surface; the granted role must sit below
	// the requester's own.
	requesterRole, isMember, err := h.permSvc.GetUserRole(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !isMember || !requesterRole.Capabilities().CanManageRoles || requesterRole.Rank() <= role.Rank() {
		writeErrorStatus(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	m, err := h.memberSvc.AddMember(r.Context(), projectID, req.UserID, role, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type changeRoleRequest struct {
	Role   string `json:"role"`
	Reason string `json:"reason"`
}

func (h *MembershipHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}
	targetID, ok := pathID(r, "userID")
	if !ok {
		writeErrorStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	m, err := h.memberSvc.ChangeRole(r.Context(), projectID, targetID, role, userID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MembershipHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}
	targetID, ok := pathID(r, "userID")
	if !ok {
		writeErrorStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}

	removed, err := h.memberSvc.RemoveMember(r.Context(), projectID, targetID, userID, r.URL.Query().Get("reason"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (h *MembershipHandler) GetPermissionSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	summary, err := h.permSvc.GetPermissionSummary(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
