// Package dispatch maps operation names to typed handlers over the manager
// and wraps every outcome in a {data} or {err} envelope.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/manager"
)

// Operation names.
const (
	OpCreateCard          = "createCard"
	OpUpdateContent       = "updateContent"
	OpRecalculateDelay    = "recalculateDelay"
	OpRecordAttempt       = "recordAttempt"
	OpGetNextCardToRepeat = "getNextCardToRepeat"
	OpDeleteCard          = "deleteCard"
	OpGetHistory          = "getHistory"
	OpGetCard             = "getCard"
)

// ErrorBody is the error half of a Response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response carries either Data or Err.
type Response struct {
	Data any        `json:"data,omitempty"`
	Err  *ErrorBody `json:"err,omitempty"`
}

// Handler decodes raw JSON arguments and runs one operation.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Registry is the table of known operations.
type Registry struct {
	handlers map[string]Handler
	validate *validator.Validate
}

type CreateCardArgs struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type UpdateContentArgs struct {
	CardID int64   `json:"cardId" validate:"required,gt=0"`
	Front  *string `json:"front"`
	Back   *string `json:"back"`
}

type RecalculateDelayArgs struct {
	CardID      int64   `json:"cardId" validate:"required,gt=0"`
	Delay       *string `json:"delay"`
	ForceRecalc bool    `json:"forceRecalc"`
}

type RecordAttemptArgs struct {
	CardID         int64  `json:"cardId" validate:"required,gt=0"`
	ProvidedAnswer string `json:"providedAnswer"`
}

// CardArgs identifies a single card.
type CardArgs struct {
	CardID int64 `json:"cardId" validate:"required,gt=0"`
}

type NoArgs struct{}

// NewRegistry builds the registry of every engine operation over m.
func NewRegistry(m *manager.Manager) *Registry {
	r := &Registry{
		handlers: make(map[string]Handler),
		validate: validator.New(),
	}

	Register(r, OpCreateCard, func(ctx context.Context, a CreateCardArgs) (domain.Projection, error) {
		return m.CreateCard(ctx, a.Front, a.Back)
	})
	Register(r, OpUpdateContent, func(ctx context.Context, a UpdateContentArgs) (domain.Projection, error) {
		return m.UpdateContent(ctx, a.CardID, a.Front, a.Back)
	})
	Register(r, OpRecalculateDelay, func(ctx context.Context, a RecalculateDelayArgs) (domain.Projection, error) {
		return m.RecalculateDelay(ctx, a.CardID, a.Delay, a.ForceRecalc)
	})
	Register(r, OpRecordAttempt, func(ctx context.Context, a RecordAttemptArgs) (domain.AttemptResult, error) {
		return m.RecordAttempt(ctx, a.CardID, a.ProvidedAnswer)
	})
	Register(r, OpGetNextCardToRepeat, func(ctx context.Context, _ NoArgs) (domain.NextCard, error) {
		return m.NextCard(ctx)
	})
	Register(r, OpDeleteCard, func(ctx context.Context, a CardArgs) (bool, error) {
		return m.DeleteCard(ctx, a.CardID)
	})
	Register(r, OpGetHistory, func(ctx context.Context, a CardArgs) ([]domain.HistoryEntry, error) {
		return m.History(ctx, a.CardID)
	})
	Register(r, OpGetCard, func(ctx context.Context, a CardArgs) (domain.Projection, error) {
		return m.GetCard(ctx, a.CardID)
	})
	return r
}

// Register adds a typed operation. Arguments are decoded into A, rejecting
// unknown fields, and checked against A's validate tags before fn runs.
func Register[A, R any](r *Registry, name string, fn func(context.Context, A) (R, error)) {
	r.handlers[name] = func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args A
		if err := decode(raw, &args); err != nil {
			return nil, domain.Validation(domain.CodeInvalidArgument, "invalid arguments for %s: %v", name, err)
		}
		if err := r.validate.Struct(args); err != nil {
			var invalid *validator.InvalidValidationError
			if !errors.As(err, &invalid) {
				return nil, domain.Validation(domain.CodeInvalidArgument, "invalid arguments for %s: %s", name, describe(err))
			}
		}
		return fn(ctx, args)
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after arguments")
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// Call runs the named operation and wraps the outcome.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) Response {
	h, ok := r.handlers[name]
	if !ok {
		return failure(domain.Validation(domain.CodeUnknownOperation, "unknown operation %q", name))
	}
	data, err := h(ctx, args)
	if err != nil {
		return failure(err)
	}
	return Response{Data: data}
}

func failure(err error) Response {
	e := domain.AsError(err)
	return Response{Err: &ErrorBody{Code: e.Code, Message: e.Message}}
}

// Names lists the registered operations in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
