package canvas

import (
	"context"
	"log/slog"
)

// SaveStatus is the save-state signal exposed to the hosting shell.
type SaveStatus uint8

const (
	// StatusIdle means no save has been attempted yet.
	StatusIdle SaveStatus = iota
	// StatusSaving means a save request is in flight.
	StatusSaving
	// StatusSaved means the last save completed.
	StatusSaved
	// StatusFailed means the last save failed; retry happens on the next
	// dirty mutation, never in a background loop.
	StatusFailed
)

// String returns the string representation of the status.
func (s SaveStatus) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusSaving:
		return "Saving"
	case StatusSaved:
		return "Saved"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Status returns the current save status.
func (e *Engine) Status() SaveStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// OnStatus registers a listener invoked on every status change.
// Listeners run outside the engine lock and must not block.
func (e *Engine) OnStatus(fn func(SaveStatus)) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// markDirtyLocked resets the debounce timer. The timer is replaced, not
// accumulated, so a burst of rapid edits coalesces into one save
// reflecting only the state after the last edit.
func (e *Engine) markDirtyLocked() {
	e.timer.Schedule(e.opts.debounce, e.autoSave)
}

// autoSave is the debounce-timer callback.
func (e *Engine) autoSave() {
	// Navigating away cancels nothing here: the engine has no notion of
	// page visibility. A hung request leaves the status at Saving.
	_ = e.Flush(context.Background())
}

// Flush serializes the document and overwrites the stored copy
// immediately, cancelling any pending debounced save. On failure the
// in-memory document is untouched; the failure is reported as a status
// only, and the next dirty mutation schedules the retry.
func (e *Engine) Flush(ctx context.Context) error {
	e.timer.Stop()

	e.mu.Lock()
	e.revision++
	blob, err := e.serializeLocked()
	e.mu.Unlock()
	if err != nil {
		Logger().Warn("serialize failed", slog.Any("error", err))
		e.setStatus(StatusFailed)
		return err
	}

	e.setStatus(StatusSaving)
	if err := e.store.PutDocument(ctx, blob); err != nil {
		Logger().Warn("save failed", slog.Any("error", err))
		e.setStatus(StatusFailed)
		return err
	}
	e.setStatus(StatusSaved)
	Logger().Info("document saved", slog.Int("bytes", len(blob)))
	return nil
}

// setStatus publishes a status change to all listeners.
func (e *Engine) setStatus(s SaveStatus) {
	e.mu.Lock()
	if e.status == s {
		e.mu.Unlock()
		return
	}
	e.status = s
	listeners := make([]func(SaveStatus), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}
