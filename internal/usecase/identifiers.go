package usecase

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	orderNumberLayout  = "20060102150405"
	orderSuffixDigits  = 4
	trackingCodeLength = 12
)

// IdentifierGenerator produces customer facing order identifiers.
type IdentifierGenerator interface {
	// OrderNumber returns prefix, UTC timestamp and a random numeric suffix.
	OrderNumber(now time.Time) string
	// TrackingCode returns an opaque uppercase shipment code.
	TrackingCode() string
}

type codeGenerator struct {
	prefix string
}

// NewIdentifierGenerator builds generator for the given prefix.
func NewIdentifierGenerator(prefix string) IdentifierGenerator {
	return codeGenerator{prefix: strings.ToUpper(prefix)}
}

func (g codeGenerator) OrderNumber(now time.Time) string {
	var b strings.Builder
	b.WriteString(g.prefix)
	b.WriteString(now.UTC().Format(orderNumberLayout))
	for i := 0; i < orderSuffixDigits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			n = big.NewInt(int64(time.Now().UnixNano() % 10))
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String()
}

func (g codeGenerator) TrackingCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return g.prefix + "-" + strings.ToUpper(raw[:trackingCodeLength])
}
