package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCodeGenerator_AccessCodeIsZeroPadded(t *testing.T) {
	gen := NewCodeGenerator(&seqRand{seq: []int{7}})
	assert.Equal(t, "000007", gen.AccessCode())

	gen = NewCodeGenerator(&seqRand{seq: []int{999999}})
	assert.Equal(t, "999999", gen.AccessCode())
}

func TestCodeGenerator_BookingReferenceFormat(t *testing.T) {
	gen := NewCodeGenerator(&seqRand{seq: []int{0, 1, 2, 25, 26}})
	gen.now = fixedClock(time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC))

	// alphabet positions 0,1,2,25,26 are A,B,C,Z,0
	assert.Equal(t, "BK-20260315-ABCZ0", gen.BookingReference())
}

func TestCodeGenerator_ReferenceUsesUTCDate(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	gen := NewCodeGenerator(&seqRand{seq: []int{0}})
	// local midnight on the 16th is still the 15th in UTC
	gen.now = fixedClock(time.Date(2026, 3, 16, 0, 30, 0, 0, paris))

	assert.Equal(t, "BK-20260315-AAAAA", gen.BookingReference())
}

func TestCryptoSource_Bounds(t *testing.T) {
	src := NewCryptoSource()
	for i := 0; i < 100; i++ {
		v := src.IntN(1_000_000)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 1_000_000)
	}
}

func TestCodeGenerator_ProductionFormats(t *testing.T) {
	gen := NewCodeGenerator(NewCryptoSource())

	assert.Regexp(t, `^\d{6}$`, gen.AccessCode())
	assert.Regexp(t, `^BK-\d{8}-[A-Z0-9]{5}$`, gen.BookingReference())
}
