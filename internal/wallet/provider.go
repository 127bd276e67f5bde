package wallet

import (
	"context"
	"errors"
)

// ErrRejected means the provider (or the user at the provider) explicitly
// declined the connection. Callers fall back to a demo identity instead of
// terminating the flow.
var ErrRejected = errors.New("provider rejected connection")

// Provider is a real wallet provider at its interface boundary.
type Provider interface {
	// Connect asks the provider for a wallet identity.
	Connect(ctx context.Context) (walletID string, err error)

	// Resume reports an existing provider-side session, if any.
	Resume(ctx context.Context) (walletID string, ok bool, err error)

	// Disconnect releases the provider-side connection. Best effort.
	Disconnect(ctx context.Context) error
}
