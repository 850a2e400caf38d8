package recyclebin

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/core/retention"
	"assetdesk/pkg/logger"
)

// OutcomeStatus is the terminal state of a submitted action.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomePartial   OutcomeStatus = "partially_succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Outcome reports a settled recover or delete action.
type Outcome struct {
	Action   ActionKind        `json:"action"`
	Status   OutcomeStatus     `json:"status"`
	Message  string            `json:"message"`
	Affected []int64           `json:"affected,omitempty"`
	Skipped  map[string]string `json:"skipped,omitempty"`
}

// ActionEntry is the audit payload handed to the recorder after a terminal
// state.
type ActionEntry struct {
	Action    ActionKind        `json:"action"`
	Kind      Kind              `json:"kind"`
	Requested []int64           `json:"requested"`
	Affected  []int64           `json:"affected,omitempty"`
	Skipped   map[string]string `json:"skipped,omitempty"`
	Outcome   OutcomeStatus     `json:"outcome"`
}

// ActionRecorder persists settled actions. Recording is best-effort and must
// never fail the action itself.
type ActionRecorder interface {
	Record(ctx context.Context, entry ActionEntry) error
}

// Coordinator drives the multi-select recover/delete workflows:
// Idle -> Confirming -> Submitting -> terminal -> Idle.
//
// Local state mutates only for ids the backend confirmed were affected; a
// result arriving after the session reloaded or closed is discarded.
type Coordinator struct {
	gateway    Gateway
	windowDays int
	recorder   ActionRecorder
	now        func() time.Time
}

// NewCoordinator creates a coordinator. recorder may be nil.
func NewCoordinator(gateway Gateway, windowDays int, recorder ActionRecorder) *Coordinator {
	if windowDays <= 0 {
		windowDays = retention.DefaultWindowDays
	}
	return &Coordinator{
		gateway:    gateway,
		windowDays: windowDays,
		recorder:   recorder,
		now:        time.Now,
	}
}

// OpenRecover opens the recover confirmation. target selects a single row;
// nil acts on the current selection.
func (c *Coordinator) OpenRecover(s *Session, target *int64) error {
	return c.open(s, ActionRecover, target)
}

// OpenDelete opens the permanent-delete confirmation.
func (c *Coordinator) OpenDelete(s *Session, target *int64) error {
	return c.open(s, ActionDelete, target)
}

func (c *Coordinator) open(s *Session, action ActionKind, target *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.modalState == stateSubmitting {
		return apperror.NewActionInFlight(string(s.modalAction))
	}

	if target != nil {
		// A single-row action icon implicitly targets just that row.
		found := false
		for _, rec := range s.recordsLocked(s.activeKind) {
			if rec.ID == *target {
				found = true
				break
			}
		}
		if !found {
			return apperror.NewNotFound(string(s.activeKind), *target)
		}
		id := *target
		s.modalTarget = &id
	} else {
		if len(s.selection) == 0 {
			return apperror.NewBusinessRule(apperror.CodeEmptySelection, "no items selected")
		}
		s.modalTarget = nil
	}

	s.modalAction = action
	s.modalState = stateConfirming
	return nil
}

// Cancel dismisses a pending confirmation. Selection stays untouched.
func (c *Coordinator) Cancel(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.modalState == stateConfirming {
		s.modalState = stateIdle
		s.modalTarget = nil
	}
}

// Confirm submits the pending action. Re-confirmation while a submission is
// settling is rejected (double-submit guard).
func (c *Coordinator) Confirm(ctx context.Context, s *Session) (*Outcome, error) {
	s.mu.Lock()
	s.touch()
	switch s.modalState {
	case stateSubmitting:
		action := s.modalAction
		s.mu.Unlock()
		return nil, apperror.NewActionInFlight(string(action))
	case stateIdle:
		s.mu.Unlock()
		return nil, apperror.NewConflict("no action pending confirmation")
	}

	action := s.modalAction
	kind := s.activeKind
	gen := s.generation
	single := s.modalTarget != nil

	var ids []int64
	if single {
		ids = []int64{*s.modalTarget}
	} else {
		ids = make([]int64, 0, len(s.selection))
		for id := range s.selection {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	records := make(map[int64]DeletedRecord, len(ids))
	for _, rec := range s.recordsLocked(kind) {
		records[rec.ID] = rec
	}

	s.modalState = stateSubmitting
	s.mu.Unlock()

	var outcome *Outcome
	if action == ActionRecover {
		outcome = c.submitRecover(ctx, s, kind, gen, ids, single)
	} else {
		outcome = c.submitDelete(ctx, s, kind, gen, ids, records, single)
	}
	return outcome, nil
}

// submitRecover issues one collaborator call per id, concurrently, and waits
// for all of them to settle before reconciling.
func (c *Coordinator) submitRecover(ctx context.Context, s *Session, kind Kind, gen uint64, ids []int64, single bool) *Outcome {
	var mu sync.Mutex
	var recovered []int64
	var firstErr error

	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			if err := c.gateway.Recover(ctx, kind, id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				logger.Warn(ctx, "recover failed", "kind", string(kind), "id", id, "error", err)
				return nil
			}
			mu.Lock()
			recovered = append(recovered, id)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(recovered, func(i, j int) bool { return recovered[i] < recovered[j] })

	outcome := &Outcome{Action: ActionRecover, Affected: recovered}
	switch {
	case len(recovered) == len(ids):
		outcome.Status = OutcomeSucceeded
		if single {
			outcome.Message = "Item recovered"
		} else {
			outcome.Message = fmt.Sprintf("Recovered %d items", len(recovered))
		}
	case len(recovered) == 0:
		outcome.Status = OutcomeFailed
		outcome.Message = failureMessage(firstErr, "failed to recover item")
	default:
		outcome.Status = OutcomePartial
		outcome.Message = fmt.Sprintf("Recovered %d of %d items", len(recovered), len(ids))
	}

	s.mu.Lock()
	if s.stillCurrentLocked(gen) {
		s.removeRecordsLocked(kind, recovered)
		// Recover always clears the selection.
		s.selection = make(map[int64]struct{})
		s.modalState = stateIdle
		s.modalTarget = nil
		s.pushToastLocked(toastLevel(outcome.Status), outcome.Message)
	}
	s.mu.Unlock()

	c.record(ctx, ActionEntry{
		Action:    ActionRecover,
		Kind:      kind,
		Requested: ids,
		Affected:  recovered,
		Outcome:   outcome.Status,
	})
	return outcome
}

// submitDelete filters the targets through the retention evaluator first.
// When nothing is eligible the action fails client-side with the soonest
// countdown and no collaborator call is made.
func (c *Coordinator) submitDelete(ctx context.Context, s *Session, kind Kind, gen uint64, ids []int64, records map[int64]DeletedRecord, single bool) *Outcome {
	now := c.now()

	var eligible []int64
	var soonest *int
	for _, id := range ids {
		rec, ok := records[id]
		if !ok {
			continue
		}
		deletedAt := rec.DeletedAt.Ptr()
		if retention.Eligible(deletedAt, c.windowDays, now) {
			eligible = append(eligible, id)
			continue
		}
		if days := retention.DaysUntilEligible(deletedAt, c.windowDays, now); days != nil {
			if soonest == nil || *days < *soonest {
				soonest = days
			}
		}
	}

	if len(eligible) == 0 {
		msg := "No selected items are eligible for permanent deletion yet"
		if soonest != nil {
			msg = fmt.Sprintf("%s (soonest in %d days)", msg, *soonest)
		}
		outcome := &Outcome{Action: ActionDelete, Status: OutcomeFailed, Message: msg}
		s.mu.Lock()
		if s.stillCurrentLocked(gen) {
			s.modalState = stateIdle
			s.modalTarget = nil
			s.pushToastLocked("error", msg)
		}
		s.mu.Unlock()
		c.record(ctx, ActionEntry{Action: ActionDelete, Kind: kind, Requested: ids, Outcome: OutcomeFailed})
		return outcome
	}

	var deleted []int64
	var skipped map[string]string
	var callErr error

	if single && len(eligible) == 1 {
		if err := c.gateway.Delete(ctx, kind, eligible[0]); err != nil {
			callErr = err
		} else {
			deleted = eligible
		}
	} else {
		res, err := c.gateway.BulkDelete(ctx, kind, eligible)
		if err != nil {
			callErr = err
		} else {
			deleted = res.Deleted
			skipped = res.Skipped
		}
	}

	outcome := &Outcome{Action: ActionDelete, Affected: deleted, Skipped: skipped}
	notSubmitted := len(ids) - len(eligible)
	skippedTotal := len(skipped) + notSubmitted
	switch {
	case callErr != nil:
		outcome.Status = OutcomeFailed
		outcome.Message = failureMessage(callErr, "failed to delete items")
	case skippedTotal == 0:
		outcome.Status = OutcomeSucceeded
		if single {
			outcome.Message = "Item permanently deleted"
		} else {
			outcome.Message = fmt.Sprintf("Deleted %d items", len(deleted))
		}
	default:
		// One combined message for the whole bulk action, never two toasts.
		outcome.Status = OutcomePartial
		outcome.Message = fmt.Sprintf("Deleted %d items, skipped %d (still in retention or in use)", len(deleted), skippedTotal)
	}

	s.mu.Lock()
	if s.stillCurrentLocked(gen) {
		// Only backend-confirmed ids leave local state; ids the response
		// does not mention are assumed still present.
		s.removeRecordsLocked(kind, deleted)
		// Clear-only-deleted policy: skipped ids stay selected so the user
		// sees what is left checked.
		for _, id := range deleted {
			delete(s.selection, id)
		}
		s.modalState = stateIdle
		s.modalTarget = nil
		s.pushToastLocked(toastLevel(outcome.Status), outcome.Message)
	}
	s.mu.Unlock()

	c.record(ctx, ActionEntry{
		Action:    ActionDelete,
		Kind:      kind,
		Requested: ids,
		Affected:  deleted,
		Skipped:   skipped,
		Outcome:   outcome.Status,
	})
	return outcome
}

func (c *Coordinator) record(ctx context.Context, entry ActionEntry) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "action log write failed", "action", string(entry.Action), "error", err)
	}
}

// failureMessage prefers the backend's verbatim error text.
func failureMessage(err error, fallback string) string {
	if detail := apperror.UpstreamDetail(err); detail != "" {
		return detail
	}
	return fallback
}

func toastLevel(status OutcomeStatus) string {
	if status == OutcomeFailed {
		return "error"
	}
	return "info"
}

// removeRecordsLocked drops the given ids from one collection.
func (s *Session) removeRecordsLocked(kind Kind, ids []int64) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	src := s.recordsLocked(kind)
	kept := src[:0]
	for _, rec := range src {
		if _, gone := drop[rec.ID]; !gone {
			kept = append(kept, rec)
		}
	}
	if kind == KindComponent {
		s.components = kept
	} else {
		s.assets = kept
	}
}
