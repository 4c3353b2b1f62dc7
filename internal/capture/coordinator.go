// Package capture owns the transient voice/photo capture flow: a single
// in-flight state machine that waits on the external transcription or OCR
// capability and feeds its output through the extraction rules.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"trackrise/internal/core"
	"trackrise/internal/extract"
)

type State string

const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StateProcessing State = "processing"
)

var (
	// ErrBusy rejects a new capture while one is already in flight.
	ErrBusy = errors.New("a capture is already in progress")
	// ErrNotCapturing reports a Complete call without a preceding Begin.
	ErrNotCapturing = errors.New("no capture in progress")
	// ErrCancelled reports that the user aborted the capture.
	ErrCancelled = errors.New("capture cancelled")
	// ErrUnsupportedMethod rejects capture methods other than voice/photo.
	ErrUnsupportedMethod = errors.New("unsupported capture method")
)

// Coordinator runs at most one capture at a time. The capability wait in
// Complete holds no lock, so Cancel and state reads stay responsive while
// transcription or OCR is running.
type Coordinator struct {
	transcriber Transcriber
	recognizer  TextRecognizer

	mu     sync.Mutex
	state  State
	method core.EntryMethod
	gen    uint64
	cancel context.CancelFunc
}

func NewCoordinator(transcriber Transcriber, recognizer TextRecognizer) *Coordinator {
	return &Coordinator{
		transcriber: transcriber,
		recognizer:  recognizer,
		state:       StateIdle,
	}
}

// State returns the current machine state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin starts a capture, fixing the entry method for the lifetime of the
// resulting draft. Only one capture may be in flight.
func (c *Coordinator) Begin(method core.EntryMethod) error {
	if method != core.EntryVoice && method != core.EntryPhoto {
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return ErrBusy
	}
	c.state = StateCapturing
	c.method = method
	return nil
}

// Complete consumes the raw capture (an audio or image handle), awaits the
// matching capability and runs extraction. On success the draft is handed
// to the caller and the machine returns to idle; on failure the caller is
// expected to offer manual entry.
func (c *Coordinator) Complete(ctx context.Context, inputHandle, defaultCurrency string) (core.Draft, error) {
	c.mu.Lock()
	if c.state != StateCapturing {
		c.mu.Unlock()
		return core.Draft{}, ErrNotCapturing
	}
	c.state = StateProcessing
	method := c.method
	gen := c.gen

	callCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	var (
		text string
		err  error
	)
	switch method {
	case core.EntryVoice:
		text, err = c.transcriber.Transcribe(callCtx, inputHandle)
		if err != nil {
			err = fmt.Errorf("transcribe audio: %w", err)
		}
	case core.EntryPhoto:
		text, err = c.recognizer.ExtractText(callCtx, inputHandle)
		if err != nil {
			err = fmt.Errorf("extract text from image: %w", err)
		}
	}

	var draft core.Draft
	if err == nil {
		switch method {
		case core.EntryVoice:
			draft, err = extract.FreeText(text, defaultCurrency)
		case core.EntryPhoto:
			draft, err = extract.Receipt(text, defaultCurrency)
			draft.ImagePath = inputHandle
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A Cancel that raced the capability call already reset the machine;
	// its result is discarded.
	if c.gen != gen {
		return core.Draft{}, ErrCancelled
	}
	c.reset()

	if err != nil {
		if callCtx.Err() != nil {
			return core.Draft{}, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		slog.WarnContext(ctx, "Capture failed",
			"entry_method", method,
			"error", err)
		return core.Draft{}, err
	}

	draft.EntryMethod = method
	return draft, nil
}

// Cancel aborts any in-flight capture, discarding partial state. Nothing is
// ever persisted by the capture flow, so there is nothing to roll back.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	c.reset()
}

// reset must be called with the lock held.
func (c *Coordinator) reset() {
	c.state = StateIdle
	c.method = ""
	c.cancel = nil
}
