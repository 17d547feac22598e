package rounds

import (
	"context"
	stderrors "errors"

	"github.com/abrezinsky/roundops/internal/errors"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// Podium maps prize slots to winners. A slot holds at most one entry and an
// entry holds at most one slot. It is either idle or armed for one slot,
// waiting for a row pick.
type Podium struct {
	slots map[models.PrizeSlot]models.WinnerSlot
	armed models.PrizeSlot
}

func NewPodium() *Podium {
	return &Podium{slots: make(map[models.PrizeSlot]models.WinnerSlot)}
}

// Assign puts ws at slot, first removing any slot ws.EntryID already holds
func (p *Podium) Assign(slot models.PrizeSlot, ws models.WinnerSlot) {
	for s, held := range p.slots {
		if held.EntryID == ws.EntryID {
			delete(p.slots, s)
		}
	}
	p.slots[slot] = ws
}

// Remove drops whichever slot id holds and reports whether it held one
func (p *Podium) Remove(id models.EntryID) bool {
	for s, held := range p.slots {
		if held.EntryID == id {
			delete(p.slots, s)
			return true
		}
	}
	return false
}

// Clear empties slot and disarms it when it was the armed one
func (p *Podium) Clear(slot models.PrizeSlot) {
	delete(p.slots, slot)
	if p.armed == slot {
		p.armed = 0
	}
}

// Arm toggles the armed slot: the same slot disarms, another one re-arms
func (p *Podium) Arm(slot models.PrizeSlot) {
	if p.armed == slot {
		p.armed = 0
		return
	}
	p.armed = slot
}

func (p *Podium) Armed() (models.PrizeSlot, bool) {
	return p.armed, p.armed != 0
}

func (p *Podium) Len() int { return len(p.slots) }

// Reset removes every assignment and disarms
func (p *Podium) Reset() {
	p.slots = make(map[models.PrizeSlot]models.WinnerSlot)
	p.armed = 0
}

// Assignments returns a copy of the slot map
func (p *Podium) Assignments() map[models.PrizeSlot]models.WinnerSlot {
	out := make(map[models.PrizeSlot]models.WinnerSlot, len(p.slots))
	for s, ws := range p.slots {
		out[s] = ws
	}
	return out
}

func (p *Podium) places() map[models.EntryID]models.PrizeSlot {
	out := make(map[models.EntryID]models.PrizeSlot, len(p.slots))
	for s, ws := range p.slots {
		out[ws.EntryID] = s
	}
	return out
}

// prizes returns the backend payload in slot order
func (p *Podium) prizes() []eventsapi.PrizeItem {
	var out []eventsapi.PrizeItem
	for _, s := range models.PrizeSlots {
		ws, ok := p.slots[s]
		if !ok {
			continue
		}
		item := eventsapi.PrizeItem{Position: int(s)}
		if ws.UserID != "" {
			item.UserID = ws.UserID
		} else {
			item.TeamID = ws.TeamID
		}
		out = append(out, item)
	}
	return out
}

// HandlePlaceClick handles a click on a podium slot. With exactly one row
// selected the row is assigned to slot at once. Otherwise the slot is armed,
// or disarmed when it already was.
func (c *Controller) HandlePlaceClick(slot models.PrizeSlot) error {
	if !slot.Valid() {
		return errors.InvalidInputf("invalid prize slot %d", slot)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	id, single := c.selection.Single()
	if !single {
		c.podium.Arm(slot)
		return nil
	}
	e, ok := c.lookupLocked().Get(id)
	if !ok {
		return errors.NotFoundf("entry %s is not on the roster", id)
	}
	c.podium.Assign(slot, winnerSlot(e))
	c.podium.armed = 0
	c.selection.Clear()
	return nil
}

// HandleRowClick handles a click on a roster row. While a slot is armed the
// row is assigned to it and the selection is left alone. Otherwise the row's
// selection is toggled.
func (c *Controller) HandleRowClick(id models.EntryID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, armed := c.podium.Armed()
	if !armed {
		return c.toggleEntryLocked(id)
	}

	e, ok := c.lookupLocked().Get(id)
	if !ok {
		return errors.NotFoundf("entry %s is not on the roster", id)
	}
	c.podium.Assign(slot, winnerSlot(e))
	c.podium.armed = 0
	return nil
}

// ClearWinnerSlot removes the winner of slot
func (c *Controller) ClearWinnerSlot(slot models.PrizeSlot) error {
	if !slot.Valid() {
		return errors.InvalidInputf("invalid prize slot %d", slot)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.podium.Clear(slot)
	return nil
}

// SubmitWinners records the podium with the backend. When at least one prize
// is recorded, winners are marked QUALIFIED and every other entry of the
// round ELIMINATED through two concurrent status batches.
//
// Assignments are cleared only when every prize was recorded. An empty
// podium makes no calls and returns a nil Feedback.
func (c *Controller) SubmitWinners(ctx context.Context) (Feedback, error) {
	c.mu.Lock()
	if c.submittingPrizes {
		c.mu.Unlock()
		return nil, errors.Busy("prize submission")
	}
	if c.podium.Len() == 0 {
		c.mu.Unlock()
		return nil, nil
	}

	prizes := c.podium.prizes()
	winners := c.podium.places()
	var qualified, eliminated []eventsapi.ResultItem
	for _, s := range models.PrizeSlots {
		if ws, ok := c.podium.slots[s]; ok {
			qualified = append(qualified, eventsapi.ResultItem{UserID: ws.UserID, TeamID: ws.TeamID, Status: models.StatusQualified})
		}
	}
	idx := c.lookupLocked()
	for _, id := range idx.IDs() {
		if _, ok := winners[id]; ok {
			continue
		}
		e, _ := idx.Get(id)
		eliminated = append(eliminated, resultItem(e, models.StatusEliminated))
	}
	c.submittingPrizes = true
	c.mu.Unlock()

	c.log.Info("Submitting winners", "prizes", len(prizes))

	fb, recorded, errCount := c.assignPrizes(ctx, prizes)
	if recorded > 0 {
		res := c.postPair(ctx, qualified, eliminated)
		if res.errorCount() > 0 || res.Recorded < res.Submitted {
			c.log.Warn("Winner status propagation incomplete", "recorded", res.Recorded, "submitted", res.Submitted, "errors", res.errorCount())
		}
	}

	c.mu.Lock()
	c.submittingPrizes = false
	if fb.Kind() == KindSuccess {
		c.podium.Reset()
		c.selection.Clear()
	}
	c.prizeFeedback.set(fb, c.clock.Now(), prizeTTL(fb))
	c.mu.Unlock()

	if recorded > 0 {
		c.invalidate(ctx,
			models.QueryKey{models.KeyRoundResults, c.eventID},
			models.QueryKey{models.KeyEventWinners, c.eventID},
		)
	}
	c.report(ctx, Report{
		Operation: OpPrizes,
		Feedback:  fb,
		Recorded:  recorded,
		Total:     len(prizes),
		Errors:    errCount,
	})
	return fb, nil
}

// assignPrizes sends the prize request and classifies its outcome
func (c *Controller) assignPrizes(ctx context.Context, prizes []eventsapi.PrizeItem) (Feedback, int, int) {
	resp, err := c.api.AssignEventPrizes(ctx, c.eventID, prizes)
	if err != nil {
		c.log.Warn("Prize assignment failed", "error", err)
		var errs []EntityError
		var apiErr *eventsapi.APIError
		if stderrors.As(err, &apiErr) {
			errs = prizeErrors(apiErr.Errors)
		}
		return Failure{Errors: errs}, 0, len(errs)
	}

	errs := prizeErrors(resp.AllErrors())
	recorded := resp.Data.RecordedCount
	switch {
	case recorded == 0:
		return Failure{Errors: errs}, 0, len(errs)
	case len(errs) > 0 || recorded < len(prizes):
		return Partial{Count: recorded, Total: len(prizes), Errors: errs}, recorded, len(errs)
	default:
		return Success{Count: recorded}, recorded, 0
	}
}
