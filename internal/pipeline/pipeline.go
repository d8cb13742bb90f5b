package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/docsight/internal/history"
	"github.com/user/docsight/internal/source"
	"github.com/user/docsight/internal/state"
	"github.com/user/docsight/internal/storage"
	"github.com/user/docsight/internal/types"
	"github.com/user/docsight/pkg/interpret"
)

// Default stage budgets. Interpretation generation is compute-heavy
// upstream, so its budget is long.
const (
	DefaultInterpretTimeout = 2 * time.Minute
	DefaultDiagramTimeout   = time.Minute
)

// Submission is one user action entering the pipeline.
type Submission struct {
	Source       *source.Normalized
	DiagramPrefs []types.DiagramType
	Language     string
}

// Options tunes stage budgets. Zero values use the defaults.
type Options struct {
	InterpretTimeout time.Duration
	DiagramTimeout   time.Duration
}

// Orchestrator drives submit → interpret → generate-diagrams →
// complete for one session at a time. A second submission while one is
// in flight is a no-op, not an error. Interpretation failure is fatal
// for the run; diagram failures are contained per type and the run
// still completes.
type Orchestrator struct {
	provider interpret.Provider
	store    *state.Store
	persist  types.Store
	log      *history.Log

	interpretTimeout time.Duration
	diagramTimeout   time.Duration

	mu      sync.Mutex
	status  Status
	message string
	active  types.SessionID
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// installMu serializes session installs across run goroutines so a
	// superseded run cannot land its Replace after its successor's.
	installMu sync.Mutex
}

// New wires an orchestrator. persist is the shared storage adapter used
// for the blob and settings keys; the session record itself is written
// through the state store.
func New(provider interpret.Provider, store *state.Store, persist types.Store, log *history.Log, opts Options) *Orchestrator {
	if opts.InterpretTimeout <= 0 {
		opts.InterpretTimeout = DefaultInterpretTimeout
	}
	if opts.DiagramTimeout <= 0 {
		opts.DiagramTimeout = DefaultDiagramTimeout
	}
	return &Orchestrator{
		provider:         provider,
		store:            store,
		persist:          persist,
		log:              log,
		interpretTimeout: opts.InterpretTimeout,
		diagramTimeout:   opts.DiagramTimeout,
		status:           StatusIdle,
	}
}

// Status returns the pipeline state and, in Errored, the user-facing
// failure message.
func (o *Orchestrator) Status() (Status, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status, o.message
}

// Submit starts a new pipeline run. It returns false without starting
// anything when a run is already in flight (single-flight policy).
func (o *Orchestrator) Submit(ctx context.Context, sub *Submission) (types.SessionID, bool) {
	prefs := validPrefs(sub.DiagramPrefs)

	o.mu.Lock()
	if o.status.Active() {
		o.mu.Unlock()
		slog.Info("submission ignored, pipeline busy")
		return "", false
	}
	id := types.NewSessionID()
	runCtx, cancel := context.WithCancel(ctx)
	o.status = StatusSubmitting
	o.message = ""
	o.active = id
	o.cancel = cancel
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		defer cancel()
		o.run(runCtx, id, sub, prefs)
	}()
	return id, true
}

// Cancel aborts the in-flight run, if any. Responses already in flight
// are discarded on arrival by the session identity check.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.active = ""
	if o.status.Active() {
		o.status = StatusIdle
		o.message = ""
	}
}

// Wait blocks until the pipeline settles or the timeout expires.
// Returns true when settled.
func (o *Orchestrator) Wait(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		status, _ := o.Status()
		if status.Terminal() {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func (o *Orchestrator) run(ctx context.Context, id types.SessionID, sub *Submission, prefs []types.DiagramType) {
	now := time.Now()
	sess := &types.Session{
		ID:            id,
		Source:        sub.Source.SourceContent(),
		DiagramPrefs:  prefs,
		Language:      sub.Language,
		CreatedAt:     now,
		LastTouchedAt: now,
	}
	if !o.install(ctx, id, sess, sub, prefs) {
		slog.Debug("run discarded before install, session superseded", "session_id", string(id))
		return
	}

	if !o.setStatus(id, StatusAwaitingInterpretation, "") {
		return
	}

	ictx, icancel := context.WithTimeout(ctx, o.interpretTimeout)
	resp, err := o.provider.Interpret(ictx, o.interpretRequest(sub))
	icancel()
	if err != nil {
		if errors.Is(err, context.Canceled) || o.stale(id) {
			slog.Debug("interpretation result discarded, session superseded", "session_id", string(id))
			return
		}
		o.setStatus(id, StatusErrored, failureMessage(err))
		slog.Error("interpretation failed", "session_id", string(id), "error", err)
		return
	}
	if o.stale(id) {
		slog.Debug("interpretation result discarded, session superseded", "session_id", string(id))
		return
	}

	// First durable milestone: reload-safety begins here.
	o.store.PatchSession(ctx, id, state.Patch{
		Interpretation:  &resp.InterpretationText,
		Recommendations: resp.Recommendations,
	})
	if !o.setStatus(id, StatusInterpretationReady, "") {
		return
	}

	// Diagram generation starts immediately, not gated on user action.
	if !o.setStatus(id, StatusGeneratingDiagrams, "") {
		return
	}
	o.generateDiagrams(ctx, id, sub, prefs)

	if o.stale(id) {
		return
	}
	// Second milestone: the settled session, diagrams included.
	touched := time.Now()
	o.store.PatchSession(ctx, id, state.Patch{LastTouchedAt: &touched})
	o.setStatus(id, StatusComplete, "")
}

// install replaces the stored session and runs the side-band writes:
// blob, settings mirror, history. The identity check inside installMu
// means a run that was canceled before installing never touches the
// store, and a run that passes the check finishes all of its writes
// before any successor starts its own. Side-band failures are not
// fatal; losing the blob only degrades the original pane.
func (o *Orchestrator) install(ctx context.Context, id types.SessionID, sess *types.Session, sub *Submission, prefs []types.DiagramType) bool {
	o.installMu.Lock()
	defer o.installMu.Unlock()

	if o.stale(id) {
		return false
	}
	o.store.Replace(ctx, sess)

	if err := source.SaveBlob(ctx, o.persist, sub.Source); err != nil {
		slog.Warn("document blob not saved", "session_id", string(id), "error", err)
	}
	settings := types.SettingsCache{DiagramPrefs: prefs, Language: sub.Language}
	if err := o.persist.Put(ctx, storage.KeySettingsCache, settings); err != nil {
		slog.Warn("settings mirror not saved", "error", err)
	}
	if o.log != nil {
		o.log.Append(ctx, types.HistoryEntry{
			ID:          types.NewEntryID(),
			DisplayName: sub.Source.DisplayName(),
			Timestamp:   sess.CreatedAt,
			SizeBytes:   int64(len(sub.Source.Blob)),
			MimeType:    sub.Source.MimeType,
		})
	}
	return true
}

// generateDiagrams dispatches one request per requested type. Each
// request succeeds, fails, or times out on its own; a failure never
// cancels a sibling. Results are patched into the store as they
// arrive, in completion order, not dispatch order.
func (o *Orchestrator) generateDiagrams(ctx context.Context, id types.SessionID, sub *Submission, prefs []types.DiagramType) {
	g, gctx := errgroup.WithContext(ctx)
	for _, dt := range prefs {
		g.Go(func() error {
			dctx, dcancel := context.WithTimeout(gctx, o.diagramTimeout)
			defer dcancel()

			resp, err := o.provider.GenerateDiagrams(dctx, o.diagramRequest(sub, dt))
			if err != nil {
				// Contained: the slot stays absent and the run
				// still reaches Complete.
				slog.Warn("diagram generation failed", "session_id", string(id), "type", string(dt), "error", err)
				return nil
			}
			markup, ok := resp.Diagrams[string(dt)]
			if !ok || markup == "" {
				slog.Info("diagram omitted by backend", "session_id", string(id), "type", string(dt))
				return nil
			}
			if o.stale(id) {
				slog.Debug("diagram discarded, session superseded", "session_id", string(id), "type", string(dt))
				return nil
			}
			o.store.PatchSession(ctx, id, state.Patch{Diagram: &state.DiagramUpdate{
				Type:    dt,
				Payload: types.DiagramPayload{Markup: markup, ReceivedAt: time.Now()},
			}})
			return nil
		})
	}
	_ = g.Wait()
}

func (o *Orchestrator) interpretRequest(sub *Submission) *interpret.Request {
	req := &interpret.Request{Language: sub.Language}
	if sub.Source.Text != "" {
		req.SourceText = sub.Source.Text
	} else {
		req.SourceDocument = sub.Source.Blob
		req.MimeType = sub.Source.MimeType
	}
	return req
}

func (o *Orchestrator) diagramRequest(sub *Submission, dt types.DiagramType) *interpret.DiagramRequest {
	base := o.interpretRequest(sub)
	return &interpret.DiagramRequest{
		SourceText:     base.SourceText,
		SourceDocument: base.SourceDocument,
		MimeType:       base.MimeType,
		Language:       base.Language,
		DiagramTypes:   []string{string(dt)},
	}
}

// stale reports whether the session has been superseded.
func (o *Orchestrator) stale(id types.SessionID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active != id
}

// setStatus advances the state machine, refusing to act for a
// superseded session so a late run cannot clobber its successor.
func (o *Orchestrator) setStatus(id types.SessionID, status Status, message string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != id {
		return false
	}
	o.status = status
	o.message = message
	return true
}

func validPrefs(prefs []types.DiagramType) []types.DiagramType {
	out := make([]types.DiagramType, 0, len(prefs))
	seen := make(map[types.DiagramType]bool)
	for _, dt := range prefs {
		if !dt.Valid() || seen[dt] {
			continue
		}
		seen[dt] = true
		out = append(out, dt)
	}
	return out
}

// failureMessage translates an interpretation error into user-facing
// text. Timeouts are called out distinctly so the user can try a
// smaller document.
func failureMessage(err error) string {
	if interpret.IsTimeout(err) {
		return "the interpretation timed out: try a smaller document"
	}
	var serverErr *interpret.ServerError
	if errors.As(err, &serverErr) {
		return fmt.Sprintf("the interpretation service reported a failure: %s", serverErr.Message)
	}
	return "the interpretation service could not be reached: check your connection and try again"
}
