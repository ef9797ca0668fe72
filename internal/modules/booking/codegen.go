package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type cryptoSource struct{}

func (cryptoSource) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// there is nothing sensible to do but stop.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return int(v.Int64())
}

// NewCryptoSource returns the production entropy source.
func NewCryptoSource() RandomSource {
	return cryptoSource{}
}

// CodeGenerator produces the two human-facing booking identifiers. The
// store enforces their uniqueness; callers regenerate on collision.
type CodeGenerator struct {
	rnd RandomSource
	now func() time.Time
}

func NewCodeGenerator(rnd RandomSource) *CodeGenerator {
	return &CodeGenerator{rnd: rnd, now: time.Now}
}

// AccessCode is the guest-facing 6-digit lookup secret, zero-padded.
func (g *CodeGenerator) AccessCode() string {
	return fmt.Sprintf("%06d", g.rnd.IntN(1_000_000))
}

// BookingReference has the form BK-YYYYMMDD-XXXXX with X drawn from A-Z0-9.
func (g *CodeGenerator) BookingReference() string {
	var sb strings.Builder
	sb.WriteString("BK-")
	sb.WriteString(g.now().UTC().Format("20060102"))
	sb.WriteByte('-')
	for i := 0; i < 5; i++ {
		sb.WriteByte(referenceAlphabet[g.rnd.IntN(len(referenceAlphabet))])
	}
	return sb.String()
}
