package wallet

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/domain"
)

// DemoPrefix marks synthesized demo wallet identifiers.
const DemoPrefix = "DEMO-"

// Identity is a produced wallet identity with its source tag.
type Identity struct {
	WalletID string
	Source   domain.IdentitySource
}

// DemoIdentity produces a demo wallet identity. A non-empty manualID is
// adopted as-is (demo-manual); otherwise a recognizable identifier is
// synthesized (demo-generated). Always succeeds.
func DemoIdentity(manualID string) Identity {
	manualID = strings.TrimSpace(manualID)
	if manualID != "" {
		return Identity{WalletID: manualID, Source: domain.SourceDemoManual}
	}

	id := uuid.NewString()[:8]
	return Identity{WalletID: DemoPrefix + id, Source: domain.SourceDemoGenerated}
}
