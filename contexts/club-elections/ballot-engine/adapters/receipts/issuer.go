package receipts

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	receiptPrefix = "VR"
	entropyBytes  = 8
)

// Issuer mints receipts shaped VR-<16 hex chars>-<unix millis>. The random
// part carries 64 bits from crypto/rand, which keeps receipts unguessable.
type Issuer struct {
	// Entropy overrides crypto/rand in tests.
	Entropy io.Reader
}

func (i Issuer) NewReceipt(_ context.Context, issuedAt time.Time) (string, error) {
	source := i.Entropy
	if source == nil {
		source = rand.Reader
	}
	buf := make([]byte, entropyBytes)
	if _, err := io.ReadFull(source, buf); err != nil {
		return "", fmt.Errorf("read receipt entropy: %w", err)
	}
	return fmt.Sprintf("%s-%s-%d",
		receiptPrefix,
		strings.ToUpper(hex.EncodeToString(buf)),
		issuedAt.UTC().UnixMilli(),
	), nil
}
