package rounds

import (
	"context"
	stderrors "errors"

	"github.com/abrezinsky/roundops/internal/errors"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

const (
	deleteFallbackMessage = "Failed to remove check-in"
	deleteSuccessMessage  = "Check-in removed"
)

// RequestDelete arms the delete confirmation for one entry
func (c *Controller) RequestDelete(id models.EntryID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lookupLocked().Get(id); !ok {
		return errors.NotFoundf("entry %s is not on the roster", id)
	}
	c.pendingDelete = &id
	return nil
}

// CancelDelete drops a pending delete confirmation
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// ConfirmDelete removes the pending entry's check-in. Teams are removed
// through their first member's participant id. A removed entry leaves the
// selection and the podium.
func (c *Controller) ConfirmDelete(ctx context.Context) (Feedback, error) {
	c.mu.Lock()
	if c.deleting {
		c.mu.Unlock()
		return nil, errors.Busy("delete")
	}
	if c.pendingDelete == nil {
		c.mu.Unlock()
		return nil, errors.Validation("no delete is pending")
	}
	id := *c.pendingDelete

	e, ok := c.lookupLocked().Get(id)
	var participantID string
	if ok {
		participantID, ok = representativeID(e)
	}
	if !ok {
		c.pendingDelete = nil
		fb := DeleteFailure{Message: deleteFallbackMessage}
		c.feedback.set(fb, c.clock.Now(), 0)
		c.mu.Unlock()
		c.log.Warn("Delete target has no participant to remove", "entry_id", id)
		c.report(ctx, Report{Operation: OpDelete, Feedback: fb, Total: 1, Errors: 1})
		return fb, nil
	}
	c.deleting = true
	c.mu.Unlock()

	var fb Feedback
	resp, err := c.api.DeleteRoundCheckIn(ctx, c.eventID, c.roundNo, participantID)
	if err != nil {
		c.log.Warn("Check-in delete failed", "entry_id", id, "participant_id", participantID, "error", err)
		msg := deleteFallbackMessage
		var apiErr *eventsapi.APIError
		if stderrors.As(err, &apiErr) && apiErr.Text() != "" {
			msg = apiErr.Text()
		}
		fb = DeleteFailure{Message: msg}
	} else {
		msg := deleteSuccessMessage
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		fb = DeleteSuccess{Message: msg}
	}

	c.mu.Lock()
	c.deleting = false
	c.pendingDelete = nil
	ttl := DeleteSuccessTTL
	if fb.Kind() == KindDeleteFailure {
		ttl = 0
	} else {
		c.selection.remove(id)
		c.podium.Remove(id)
	}
	c.feedback.set(fb, c.clock.Now(), ttl)
	c.mu.Unlock()

	r := Report{Operation: OpDelete, Feedback: fb, Total: 1}
	if fb.Kind() == KindDeleteSuccess {
		r.Recorded = 1
		c.invalidate(ctx, models.QueryKey{models.KeyRoundCheckIns})
	} else {
		r.Errors = 1
	}
	c.report(ctx, r)
	return fb, nil
}
