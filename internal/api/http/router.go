package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter assembles the API surface. Invitation preview is the only
// public route; everything else requires an authenticated principal.
func NewRouter(
	auth *AuthMiddleware,
	membership *MembershipHandler,
	admission *AdmissionHandler,
	audit *AuditHandler,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID)

	// Public: invite preview by bearer secret.
	r.HandleFunc("/invitations/{token}", admission.ValidateToken).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(auth.Require)

	// Invitation redemption.
	protected.HandleFunc("/invitations/{token}/accept", admission.AcceptInvitation).Methods(http.MethodPost)

	// Membership management.
	protected.HandleFunc("/projects/{projectID}/members", membership.ListMembers).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{projectID}/members", membership.AddMember).Methods(http.MethodPost)
	protected.HandleFunc("/projects/{projectID}/members/{userID}/role", membership.ChangeRole).Methods(http.MethodPatch)
	protected.HandleFunc("/projects/{projectID}/members/{userID}", membership.RemoveMember).Methods(http.MethodDelete)
	protected.HandleFunc("/projects/{projectID}/permissions", membership.GetPermissionSummary).Methods(http.MethodGet)

	// Admission control.
	protected.HandleFunc("/projects/{projectID}/invitations", admission.OpenAdmissions).Methods(http.MethodPost)
	protected.HandleFunc("/projects/{projectID}/invitations", admission.CloseAdmissions).Methods(http.MethodDelete)
	protected.HandleFunc("/projects/{projectID}/invitations", admission.GetActiveLink).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{projectID}/invitations/stats", admission.GetStats).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{projectID}/invitations/share", admission.ShareInvitation).Methods(http.MethodPost)

	// Audit trail.
	protected.HandleFunc("/projects/{projectID}/audit", audit.GetAuditTrail).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{projectID}/audit/joins", audit.GetJoinHistory).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{projectID}/audit/role-changes", audit.GetRoleChangeHistory).Methods(http.MethodGet)

	return r
}
