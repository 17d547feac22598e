package rounds

import (
	"context"

	"github.com/abrezinsky/roundops/internal/errors"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// ApplyStatus records status for every selected entry. In auto mode a
// QUALIFIED or ELIMINATED batch also sends the opposite status for every
// unselected entry of the whole round, as a second concurrent call.
//
// An empty selection makes no calls and returns a nil Feedback. Backend
// failures are reported through the returned Feedback, not as an error.
func (c *Controller) ApplyStatus(ctx context.Context, status models.ParticipantStatus) (Feedback, error) {
	if !status.Valid() {
		return nil, errors.InvalidInputf("unknown status %q", status)
	}

	c.mu.Lock()
	if c.pendingBatch {
		c.mu.Unlock()
		return nil, errors.Busy("status update")
	}
	ids := c.selection.IDs()
	if len(ids) == 0 {
		c.mu.Unlock()
		return nil, nil
	}

	idx := c.lookupLocked()
	selected := make(map[models.EntryID]struct{}, len(ids))
	primary := make([]eventsapi.ResultItem, 0, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
		e, ok := idx.Get(id)
		if !ok {
			continue
		}
		primary = append(primary, resultItem(e, status))
	}

	var complement []eventsapi.ResultItem
	other, dual := status.Complement()
	dual = dual && c.mode == models.ModeAuto
	if dual {
		for _, id := range idx.IDs() {
			if _, ok := selected[id]; ok {
				continue
			}
			e, _ := idx.Get(id)
			complement = append(complement, resultItem(e, other))
		}
	}
	if len(primary) == 0 && !dual {
		// every selected row has left the roster
		c.selection.Clear()
		c.mu.Unlock()
		return nil, nil
	}
	c.pendingBatch = true
	c.mu.Unlock()

	c.log.Info("Applying round status", "status", status, "selected", len(primary), "complement", len(complement), "dual", dual)

	var res batchResult
	if dual {
		res = c.postPair(ctx, primary, complement)
	} else {
		res = c.postBatch(ctx, primary)
	}
	fb := classify(res)

	c.mu.Lock()
	c.pendingBatch = false
	c.selection.Clear()
	c.feedback.set(fb, c.clock.Now(), batchTTL(fb))
	c.mu.Unlock()

	c.invalidate(ctx, c.roundKey(models.KeyRoundResults))
	c.report(ctx, Report{
		Operation: OpStatusBatch,
		Feedback:  fb,
		Recorded:  res.Recorded,
		Total:     res.Submitted,
		Errors:    res.errorCount(),
	})
	return fb, nil
}
