package jobs

import (
	"context"
	"time"

	"teamspace-backend/internal/logger"
)

// DeactivateExpiredInvitations flips active invitation links past their
// expiration to inactive. Usability is re-evaluated on every validation
// and acceptance regardless, so this sweep only keeps the single-active-
// slot bookkeeping tidy for reporting.
func (jr *JobRunner) DeactivateExpiredInvitations() {
	jr.runWithRecovery("DeactivateExpiredInvitations", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		closed, err := jr.store.InvitationRepository.DeactivateExpired(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to deactivate expired invitation links", "error", err)
			return
		}
		if closed > 0 {
			logger.Info("Deactivated expired invitation links", "count", closed)
		}
	})
}
