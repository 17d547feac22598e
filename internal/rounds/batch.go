package rounds

import (
	"context"
	stderrors "errors"

	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// batchResult is the outcome of one or more batch calls
type batchResult struct {
	Recorded   int
	Submitted  int
	UserErrors []eventsapi.UserError
	TeamErrors []eventsapi.TeamError
}

func (r batchResult) errorCount() int {
	return len(r.UserErrors) + len(r.TeamErrors)
}

func (r batchResult) add(o batchResult) batchResult {
	return batchResult{
		Recorded:   r.Recorded + o.Recorded,
		Submitted:  r.Submitted + o.Submitted,
		UserErrors: append(append([]eventsapi.UserError(nil), r.UserErrors...), o.UserErrors...),
		TeamErrors: append(append([]eventsapi.TeamError(nil), r.TeamErrors...), o.TeamErrors...),
	}
}

// postBatch sends one batch and never fails: a rejected call becomes a
// zero-recorded result carrying whatever per-entity errors the backend sent.
func (c *Controller) postBatch(ctx context.Context, items []eventsapi.ResultItem) batchResult {
	res := batchResult{Submitted: len(items)}
	resp, err := c.api.PostRoundResults(ctx, c.eventID, c.roundNo, items)
	if err != nil {
		c.log.Warn("Round results batch failed", "event_id", c.eventID, "round", c.roundNo, "items", len(items), "error", err)
		var apiErr *eventsapi.APIError
		if stderrors.As(err, &apiErr) {
			res.UserErrors = apiErr.UserErrors
			res.TeamErrors = apiErr.TeamErrors
		}
		return res
	}
	res.Recorded = resp.Data.RecordedCount
	res.UserErrors = resp.UserErrors
	res.TeamErrors = resp.TeamErrors
	return res
}

// postPair sends two batches concurrently and sums them. A failure of one
// half never cancels the other.
func (c *Controller) postPair(ctx context.Context, primary, complement []eventsapi.ResultItem) batchResult {
	var a, b batchResult
	var g errgroup.Group
	g.Go(func() error {
		a = c.postBatch(ctx, primary)
		return nil
	})
	g.Go(func() error {
		b = c.postBatch(ctx, complement)
		return nil
	})
	_ = g.Wait()
	return a.add(b)
}

// classify maps an aggregated result onto a feedback variant
func classify(r batchResult) Feedback {
	errs := append(userErrors(r.UserErrors), teamErrors(r.TeamErrors)...)
	switch {
	case r.Recorded == 0:
		return Failure{Errors: errs}
	case len(errs) > 0:
		return Partial{Count: r.Recorded, Total: r.Submitted, Errors: errs}
	default:
		return Success{Count: r.Recorded}
	}
}
