package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclIdRoundTrip(t *testing.T) {
	d := DeclId{File: 3, Pos: 42}
	parsed, err := ParseDeclId(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)
}

func TestSignatureIdRoundTrip(t *testing.T) {
	s := SignatureId{File: 7, Pos: 128}
	parsed, err := ParseSignatureId(s.String())
	require.NoError(t, err)
	assert.Equal(t, s, parsed)
}

func TestTypeDeclIdRoundTrip(t *testing.T) {
	cases := []TypeDeclId{
		{Namespace: "", Name: "MyClass"},
		{Namespace: "mymod.sub", Name: "Inner"},
	}
	for _, tc := range cases {
		parsed := ParseTypeDeclId(tc.String())
		assert.Equal(t, tc, parsed)
	}
}

func TestRangeContainsAndOverlaps(t *testing.T) {
	r := Range{Start: 10, End: 20}
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(20))
	assert.True(t, r.Overlaps(Range{Start: 15, End: 25}))
	assert.False(t, r.Overlaps(Range{Start: 20, End: 30}))
}
