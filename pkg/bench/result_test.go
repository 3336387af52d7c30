package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		name string
		kind ErrorKind
		want string
	}{
		{"NXDOMAIN", KindNXDomain, "NXDOMAIN"},
		{"no answer", KindNoAnswer, "NoAnswer"},
		{"timeout", KindTimeout, "Timeout"},
		{"other carries the label", OtherKind("SERVFAIL"), "Other (SERVFAIL)"},
		{"other with empty label", OtherKind(""), "Other ()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestErrorKind_Comparable(t *testing.T) {
	assert.Equal(t, OtherKind("SERVFAIL"), OtherKind("SERVFAIL"))
	assert.NotEqual(t, OtherKind("SERVFAIL"), OtherKind("REFUSED"))
	assert.NotEqual(t, KindTimeout, KindNXDomain)

	// usable as a map key for counting
	counts := map[ErrorKind]int{}
	counts[OtherKind("SERVFAIL")]++
	counts[OtherKind("SERVFAIL")]++
	assert.Equal(t, 2, counts[OtherKind("SERVFAIL")])
}
