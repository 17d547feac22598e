// Package rounds holds the round-operations controller: selection, status
// batches, check-in deletes, podium assignment and result feedback for one
// event round.
package rounds

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/abrezinsky/roundops/internal/errors"
	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// DefaultPageSize is used when Config.PageSize is not positive
const DefaultPageSize = 25

// ResultsAPI is the subset of the events backend the controller writes to
type ResultsAPI interface {
	PostRoundResults(ctx context.Context, eventID string, roundNo int, results []eventsapi.ResultItem) (*eventsapi.RoundResultsResponse, error)
	DeleteRoundCheckIn(ctx context.Context, eventID string, roundNo int, participantID string) (*eventsapi.MessageResponse, error)
	AssignEventPrizes(ctx context.Context, eventID string, prizes []eventsapi.PrizeItem) (*eventsapi.PrizesResponse, error)
}

// Invalidator marks cached server data stale so it gets fetched again
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...models.QueryKey)
}

// ModeStore persists the assignment mode. LoadMode reports false when no
// mode is stored or the store cannot be read.
type ModeStore interface {
	LoadMode(ctx context.Context) (models.AssignmentMode, bool)
	SaveMode(ctx context.Context, mode models.AssignmentMode) error
}

// Reporter is told about every finished operation
type Reporter interface {
	Report(ctx context.Context, r Report)
}

// Operation kinds passed to a Reporter
const (
	OpStatusBatch = "status_batch"
	OpDelete      = "delete"
	OpPrizes      = "prizes"
)

// Report describes one finished operation
type Report struct {
	Operation string
	EventID   string
	RoundNo   int
	Feedback  Feedback
	Recorded  int
	Total     int
	Errors    int
}

// Config configures a Controller. Invalidator, Modes, Reporter and Clock are
// optional.
type Config struct {
	EventID     string
	RoundNo     int
	PageSize    int
	API         ResultsAPI
	Invalidator Invalidator
	Modes       ModeStore
	Reporter    Reporter
	Clock       clock.Clock
	Log         logger.Logger
}

// Controller is the state of one operator's view of one round. All methods
// are safe for concurrent use. Network calls run without holding the lock.
type Controller struct {
	eventID  string
	roundNo  int
	pageSize int

	api         ResultsAPI
	invalidator Invalidator
	modes       ModeStore
	reporter    Reporter
	clock       clock.Clock
	log         logger.Logger

	mu sync.Mutex

	entries []models.Entry
	version uint64
	index   *Index
	page    int

	selection     *Selection
	mode          models.AssignmentMode
	pendingDelete *models.EntryID
	podium        *Podium

	feedback      feedbackSlot
	prizeFeedback feedbackSlot

	pendingBatch     bool
	deleting         bool
	submittingPrizes bool
}

// NewController creates a controller with an empty roster. The assignment
// mode is read once from cfg.Modes and defaults to auto.
func NewController(ctx context.Context, cfg Config) *Controller {
	c := &Controller{
		eventID:     cfg.EventID,
		roundNo:     cfg.RoundNo,
		pageSize:    cfg.PageSize,
		api:         cfg.API,
		invalidator: cfg.Invalidator,
		modes:       cfg.Modes,
		reporter:    cfg.Reporter,
		clock:       cfg.Clock,
		log:         cfg.Log,
		page:        1,
		selection:   NewSelection(),
		podium:      NewPodium(),
		mode:        models.ModeAuto,
	}
	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	c.log = c.log.With("event_id", c.eventID, "round", c.roundNo)
	c.index = NewIndex(0, nil)

	if c.modes != nil {
		if mode, ok := c.modes.LoadMode(ctx); ok {
			c.mode = mode
		}
	}
	return c
}

func (c *Controller) EventID() string { return c.eventID }
func (c *Controller) RoundNo() int    { return c.roundNo }

// SetRoster replaces the full dataset. The lookup index is rebuilt on next use.
func (c *Controller) SetRoster(entries []models.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append([]models.Entry(nil), entries...)
	c.version++
	if c.page > c.totalPagesLocked() {
		c.page = c.totalPagesLocked()
	}
}

// RosterVersion increases on every SetRoster
func (c *Controller) RosterVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// lookupLocked returns the index for the current dataset version
func (c *Controller) lookupLocked() *Index {
	if c.index.Version() != c.version {
		c.index = NewIndex(c.version, c.entries)
	}
	return c.index
}

func (c *Controller) totalPagesLocked() int {
	n := c.lookupLocked().Len()
	if n == 0 {
		return 1
	}
	return (n + c.pageSize - 1) / c.pageSize
}

// SetPage moves to page, clamped to the available range
func (c *Controller) SetPage(page int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if total := c.totalPagesLocked(); page > total {
		page = total
	}
	c.page = page
	return c.page
}

// pageIDsLocked returns the EntryIDs shown on the current page
func (c *Controller) pageIDsLocked() []models.EntryID {
	ids := c.lookupLocked().IDs()
	start := (c.page - 1) * c.pageSize
	if start >= len(ids) {
		return nil
	}
	end := start + c.pageSize
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}

// ToggleAll selects the whole current page, or clears the selection when
// the page is already fully selected.
func (c *Controller) ToggleAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.ToggleAll(c.pageIDsLocked())
}

// ToggleEntry adds or removes one row from the selection
func (c *Controller) ToggleEntry(id models.EntryID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toggleEntryLocked(id)
}

func (c *Controller) toggleEntryLocked(id models.EntryID) error {
	if _, ok := c.lookupLocked().Get(id); !ok && !c.selection.Has(id) {
		return errors.NotFoundf("entry %s is not on the roster", id)
	}
	c.selection.Toggle(id)
	return nil
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Clear()
}

// Mode returns the current assignment mode
func (c *Controller) Mode() models.AssignmentMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetAutoMode switches between auto and manual mode. Persisting the choice
// is best effort and never fails the caller.
func (c *Controller) SetAutoMode(ctx context.Context, auto bool) models.AssignmentMode {
	mode := models.ModeManual
	if auto {
		mode = models.ModeAuto
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()

	if c.modes != nil {
		if err := c.modes.SaveMode(ctx, mode); err != nil {
			c.log.Warn("Failed to persist assignment mode", "mode", mode, "error", err)
		}
	}
	return mode
}

// DismissFeedback clears the status batch or delete banner
func (c *Controller) DismissFeedback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feedback.clear()
}

// DismissPrizeFeedback clears the prize submission banner
func (c *Controller) DismissPrizeFeedback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prizeFeedback.clear()
}

// Feedback returns the current status batch or delete banner, nil when none
func (c *Controller) Feedback() Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	fb, _ := c.feedback.get(c.clock.Now())
	return fb
}

// PrizeFeedback returns the current prize banner, nil when none
func (c *Controller) PrizeFeedback() Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	fb, _ := c.prizeFeedback.get(c.clock.Now())
	return fb
}

func (c *Controller) invalidate(ctx context.Context, keys ...models.QueryKey) {
	if c.invalidator == nil {
		return
	}
	c.invalidator.Invalidate(ctx, keys...)
}

func (c *Controller) report(ctx context.Context, r Report) {
	if c.reporter == nil {
		return
	}
	r.EventID, r.RoundNo = c.eventID, c.roundNo
	c.reporter.Report(ctx, r)
}

func (c *Controller) roundKey(root string) models.QueryKey {
	return models.QueryKey{root, c.eventID, strconv.Itoa(c.roundNo)}
}

// Row is one roster row of the current page
type Row struct {
	EntryID     models.EntryID    `json:"entry_id"`
	Type        string            `json:"type"`
	Label       string            `json:"label"`
	Solo        *models.Solo      `json:"solo,omitempty"`
	Team        *models.Team      `json:"team,omitempty"`
	Selected    bool              `json:"selected"`
	Place       *models.PrizeSlot `json:"place,omitempty"`
	CheckedInAt time.Time         `json:"checked_in_at"`
}

// State is a point-in-time view of the controller
type State struct {
	EventID          string                                 `json:"event_id"`
	RoundNo          int                                    `json:"round_no"`
	Page             int                                    `json:"page"`
	PageSize         int                                    `json:"page_size"`
	TotalPages       int                                    `json:"total_pages"`
	TotalEntries     int                                    `json:"total_entries"`
	Rows             []Row                                  `json:"rows"`
	Selected         []models.EntryID                       `json:"selected"`
	AllSelected      bool                                   `json:"all_selected"`
	SomeSelected     bool                                   `json:"some_selected"`
	Mode             models.AssignmentMode                  `json:"mode"`
	Winners          map[models.PrizeSlot]models.WinnerSlot `json:"winners"`
	PendingPlace     *models.PrizeSlot                      `json:"pending_place,omitempty"`
	Guidance         string                                 `json:"guidance,omitempty"`
	PendingDelete    *models.EntryID                        `json:"pending_delete,omitempty"`
	Feedback         *Banner                                `json:"feedback,omitempty"`
	PrizeFeedback    *Banner                                `json:"prize_feedback,omitempty"`
	PendingBatch     bool                                   `json:"pending_batch"`
	Deleting         bool                                   `json:"deleting"`
	SubmittingPrizes bool                                   `json:"submitting_prizes"`
}

// Snapshot returns the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.lookupLocked()
	pageIDs := c.pageIDsLocked()
	places := c.podium.places()

	st := State{
		EventID:          c.eventID,
		RoundNo:          c.roundNo,
		Page:             c.page,
		PageSize:         c.pageSize,
		TotalPages:       c.totalPagesLocked(),
		TotalEntries:     idx.Len(),
		Rows:             make([]Row, 0, len(pageIDs)),
		Selected:         c.selection.IDs(),
		AllSelected:      c.selection.AllSelected(pageIDs),
		SomeSelected:     c.selection.SomeSelected(pageIDs),
		Mode:             c.mode,
		Winners:          c.podium.Assignments(),
		PendingBatch:     c.pendingBatch,
		Deleting:         c.deleting,
		SubmittingPrizes: c.submittingPrizes,
	}
	for _, id := range pageIDs {
		e, _ := idx.Get(id)
		row := Row{
			EntryID:     id,
			Type:        "solo",
			Label:       Label(e),
			Selected:    c.selection.Has(id),
			CheckedInAt: e.CheckedInAt(),
		}
		switch v := e.(type) {
		case models.Solo:
			row.Solo = &v
		case models.Team:
			row.Type = "team"
			row.Team = &v
		}
		if slot, ok := places[id]; ok {
			row.Place = &slot
		}
		st.Rows = append(st.Rows, row)
	}
	if slot, ok := c.podium.Armed(); ok {
		st.PendingPlace = &slot
		st.Guidance = "Click a row to assign " + slot.Ordinal() + " place"
	}
	if c.pendingDelete != nil {
		id := *c.pendingDelete
		st.PendingDelete = &id
	}
	now := c.clock.Now()
	if fb, exp := c.feedback.get(now); fb != nil {
		st.Feedback = NewBanner(fb, exp)
	}
	if fb, exp := c.prizeFeedback.get(now); fb != nil {
		st.PrizeFeedback = NewBanner(fb, exp)
	}
	return st
}
