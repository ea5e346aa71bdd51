package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/logger"
	"teamspace-backend/internal/repository"
	"teamspace-backend/internal/security"
)

// maxRedeemAttempts bounds the compare-and-swap retry loop on invitation
// acceptance. Each retry re-reads and re-validates the link first.
const maxRedeemAttempts = 5

type admissionService struct {
	inviteRepo  repository.InvitationRepository
	memberRepo  repository.MembershipRepository
	auditRepo   repository.AuditRepository
	projects    repository.ProjectDirectory
	permissions PermissionService
	emailSvc    EmailService
	inviteURL   string
	tokenBytes  int
}

func NewAdmissionService(
	inviteRepo repository.InvitationRepository,
	memberRepo repository.MembershipRepository,
	auditRepo repository.AuditRepository,
	projects repository.ProjectDirectory,
	permissions PermissionService,
	emailSvc EmailService,
	inviteURL string,
	tokenBytes int,
) AdmissionService {
	return &admissionService{
		inviteRepo:  inviteRepo,
		memberRepo:  memberRepo,
		auditRepo:   auditRepo,
		projects:    projects,
		permissions: permissions,
		emailSvc:    emailSvc,
		inviteURL:   inviteURL,
		tokenBytes:  tokenBytes,
	}
}

// OpenAdmissions creates the project's single active invitation link,
// closing any previous one. Only the OWNER may open admissions.
func (s *admissionService) OpenAdmissions(ctx context.Context, projectID, requestedBy int32, opts OpenAdmissionsOptions) (*domain.InvitationLink, error) {
	if err := s.requireOwner(ctx, projectID, requestedBy); err != nil {
		return nil, err
	}

	role := opts.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() || role == domain.RoleOwner {
		return nil, fmt.Errorf("%w: invitation role %q", domain.ErrInvalidRole, role)
	}

	token, err := security.NewInviteSecret(s.tokenBytes)
	if err != nil {
		return nil, err
	}

	link := &domain.InvitationLink{
		ProjectID: projectID,
		Token:     token,
		CreatedBy: requestedBy,
		Role:      role,
		MaxUses:   opts.MaxUses,
		ExpiresOn: opts.ExpiresOn,
	}
	if err := s.inviteRepo.CreateActive(ctx, link); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "admissions opened",
		"project_id", projectID, "invitation_id", link.ID,
		"role", role, "opened_by", requestedBy)
	return link, nil
}

// CloseAdmissions deactivates the active link. Closing an already-closed
// project succeeds as a no-op.
func (s *admissionService) CloseAdmissions(ctx context.Context, projectID, requestedBy int32) error {
	if err := s.requireOwner(ctx, projectID, requestedBy); err != nil {
		return err
	}
	if err := s.inviteRepo.DeactivateActive(ctx, projectID); err != nil {
		return err
	}
	logger.InfoContext(ctx, "admissions closed", "project_id", projectID, "closed_by", requestedBy)
	return nil
}

// ValidateToken is the read-only preview used before a user commits to
// joining. It mutates nothing.
func (s *admissionService) ValidateToken(ctx context.Context, token string) (*domain.InvitationLink, error) {
	link, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrInvalidToken
	}
	if err := link.UsableAt(time.Now().UTC()); err != nil {
		return nil, err
	}
	return link, nil
}

// AcceptInvitation redeems a token for a membership. Acceptance by an
// existing member is idempotent: the membership is returned as-is and
// neither the use count nor the audit trail moves. New joins run through
// the repository's compare-and-swap transaction; on a lost race the link
// is re-read and re-validated before retrying, so a link with one
// remaining use never admits two concurrent joiners.
func (s *admissionService) AcceptInvitation(ctx context.Context, token string, userID int32, meta domain.RequestMeta) (*AcceptResult, error) {
	for attempt := 0; attempt < maxRedeemAttempts; attempt++ {
		link, err := s.ValidateToken(ctx, token)
		if err != nil {
			return nil, err
		}

		existing, err := s.memberRepo.Get(ctx, link.ProjectID, userID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &AcceptResult{Membership: existing, IsExistingMember: true}, nil
		}

		m := &domain.Membership{ProjectID: link.ProjectID, UserID: userID}
		rec := &domain.JoinRecord{IPAddress: meta.IPAddress, UserAgent: meta.UserAgent}
		err = s.inviteRepo.Redeem(ctx, link, m, rec)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "invitation accepted",
				"project_id", link.ProjectID, "user_id", userID,
				"invitation_id", link.ID, "use_count", link.UseCount)
			return &AcceptResult{Membership: m}, nil
		case errors.Is(err, repository.ErrConflict):
			// Lost the use-count race; loop re-validates against the
			// updated link.
			continue
		case errors.Is(err, domain.ErrAlreadyMember):
			existing, getErr := s.memberRepo.Get(ctx, link.ProjectID, userID)
			if getErr != nil {
				return nil, getErr
			}
			if existing == nil {
				return nil, err
			}
			return &AcceptResult{Membership: existing, IsExistingMember: true}, nil
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("invitation acceptance retries exhausted: %w", repository.ErrConflict)
}

func (s *admissionService) GetActiveInvitationLink(ctx context.Context, projectID int32) (*domain.InvitationLink, error) {
	return s.inviteRepo.GetActiveByProject(ctx, projectID)
}

// GetInvitationStats aggregates every historical link, deactivated ones
// included, with the join records it produced.
func (s *admissionService) GetInvitationStats(ctx context.Context, projectID int32) ([]domain.InvitationStats, error) {
	links, err := s.inviteRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	aggregates, err := s.auditRepo.JoinStatsByInvitation(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stats := make([]domain.InvitationStats, 0, len(links))
	for _, link := range links {
		agg := aggregates[link.ID]
		days := now.Sub(link.CreatedOn).Hours() / 24
		if days < 1 {
			days = 1
		}
		stats = append(stats, domain.InvitationStats{
			Link:           link,
			JoinCount:      agg.JoinCount,
			UniqueJoiners:  agg.UniqueJoiners,
			AvgJoinsPerDay: float64(agg.JoinCount) / days,
		})
	}
	return stats, nil
}

// ShareInvitation emails the active invitation link. The recipient
// address is opaque to this core; delivery belongs to the email
// collaborator.
func (s *admissionService) ShareInvitation(ctx context.Context, projectID, requestedBy int32, email string) error {
	if err := s.requireOwner(ctx, projectID, requestedBy); err != nil {
		return err
	}

	link, err := s.inviteRepo.GetActiveByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if link == nil {
		return domain.ErrInvitationDeactivated
	}

	projectName := ""
	if project, err := s.projects.GetProject(ctx, projectID); err == nil && project != nil {
		projectName = project.Name
	}

	url := fmt.Sprintf("%s/%s", s.inviteURL, link.Token)
	if err := s.emailSvc.SendInvitationLink(ctx, email, projectName, url); err != nil {
		return err
	}

	logger.InfoContext(ctx, "invitation shared", "project_id", projectID, "shared_by", requestedBy)
	return nil
}

func (s *admissionService) requireOwner(ctx context.Context, projectID, userID int32) error {
	ok, err := s.permissions.CheckPermission(ctx, projectID, userID, domain.RoleOwner)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInsufficientPermissions
	}
	return nil
}
