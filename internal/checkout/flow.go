// Package checkout models the client-side checkout flow: submit the form,
// confirm in a dialog, clear the cart, move on to the success page.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/01moynul/storefront-golang/internal/apperr"
)

// State of the checkout flow.
type State int

const (
	Idle State = iota
	ConfirmModalOpen
	Processing
	Redirecting
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ConfirmModalOpen:
		return "confirm"
	case Processing:
		return "processing"
	case Redirecting:
		return "redirecting"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Redirect targets.
const (
	SuccessPath  = "/order-success"
	ProductsPath = "/products"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// current state, e.g. confirming twice.
var ErrInvalidTransition = errors.New("checkout: invalid transition")

// CartClearer empties the signed-in user's cart.
type CartClearer interface {
	ClearCart(ctx context.Context) error
}

// Flow is the checkout state machine. It is safe for concurrent use; a
// second Confirm while one is in flight is rejected.
type Flow struct {
	mu         sync.Mutex
	state      State
	clearer    CartClearer
	form       ShippingForm
	err        error
	redirectTo string
	onChange   []func(State)
}

// NewFlow starts a flow in Idle.
func NewFlow(clearer CartClearer) *Flow {
	return &Flow{clearer: clearer}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error that moved the flow to Failed.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// RedirectTo is the path to navigate to once the flow is Redirecting.
func (f *Flow) RedirectTo() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirectTo
}

// Form returns the submitted shipping form.
func (f *Flow) Form() ShippingForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// OnChange registers an observer called after every transition.
func (f *Flow) OnChange(fn func(State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = append(f.onChange, fn)
}

// set must be called with f.mu held; it returns the observers to notify.
func (f *Flow) set(s State) []func(State) {
	f.state = s
	return append([]func(State){}, f.onChange...)
}

func notify(observers []func(State), s State) {
	for _, fn := range observers {
		fn(s)
	}
}

// Submit validates the form and opens the confirm dialog. An empty cart
// skips checkout altogether and redirects to the product listing.
func (f *Flow) Submit(form ShippingForm, cartEmpty bool) error {
	f.mu.Lock()
	if f.state != Idle {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if cartEmpty {
		f.redirectTo = ProductsPath
		obs := f.set(Redirecting)
		f.mu.Unlock()
		notify(obs, Redirecting)
		return nil
	}
	if err := form.Validate(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.form = form
	obs := f.set(ConfirmModalOpen)
	f.mu.Unlock()
	notify(obs, ConfirmModalOpen)
	return nil
}

// Cancel closes the confirm dialog.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	if f.state != ConfirmModalOpen {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	obs := f.set(Idle)
	f.mu.Unlock()
	notify(obs, Idle)
	return nil
}

// Confirm clears the cart and, on success, moves to Redirecting with
// RedirectTo set to the success page. On failure the flow moves to Failed
// instead of hanging in Processing; Retry tries again.
func (f *Flow) Confirm(ctx context.Context) error {
	return f.process(ctx, ConfirmModalOpen)
}

// Retry re-runs the cart clear after a failure.
func (f *Flow) Retry(ctx context.Context) error {
	return f.process(ctx, Failed)
}

func (f *Flow) process(ctx context.Context, from State) error {
	f.mu.Lock()
	if f.state != from {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.err = nil
	obs := f.set(Processing)
	f.mu.Unlock()
	notify(obs, Processing)

	err := f.clearer.ClearCart(ctx)

	f.mu.Lock()
	if err != nil {
		log.Printf("checkout: clearing cart failed: %v", err)
		f.err = err
		obs = f.set(Failed)
		f.mu.Unlock()
		notify(obs, Failed)
		return err
	}
	f.redirectTo = SuccessPath
	obs = f.set(Redirecting)
	f.mu.Unlock()
	notify(obs, Redirecting)
	return nil
}

// Message is the text to show in the Failed state.
func (f *Flow) Message() string {
	return apperr.Message(f.Err())
}
