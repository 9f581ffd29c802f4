package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_CollectsOneEntryPerRule(t *testing.T) {
	v := New()
	require.True(t, v.Valid())

	v.Check(false, "Username", "too short")
	v.Check(false, "Username", "not alphanumeric")
	v.Check(true, "Email", "never added")
	v.Check(false, "Username", "too short")

	require.False(t, v.Valid())
	assert.Equal(t, Errors{
		{Field: "Username", Message: "too short"},
		{Field: "Username", Message: "not alphanumeric"},
	}, v.Errors)
	assert.True(t, v.Has("Username"))
	assert.False(t, v.Has("Email"))
}

func TestAlphanumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice1", true},
		{"ALICE", true},
		{"12345", true},
		{"", false},
		{"alice_1", false},
		{"alice 1", false},
		{"ålice", false},
		{"al-ce", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Alphanumeric(tc.in))
		})
	}
}

func TestEmailRX(t *testing.T) {
	valid := []string{"a@b.com", "first.last+tag@example.co.uk", "X@Y.ORG"}
	invalid := []string{"", "a@b", "plainaddress", "@b.com", "a@.com", "a b@c.com"}

	for _, e := range valid {
		assert.True(t, Matches(e, EmailRX), e)
	}
	for _, e := range invalid {
		assert.False(t, Matches(e, EmailRX), e)
	}
}

func TestChars(t *testing.T) {
	assert.True(t, MinChars("héllo", 5))
	assert.False(t, MinChars("abcd", 5))
	assert.True(t, MaxChars("abc", 3))
	assert.False(t, MaxChars("abcd", 3))
}

func TestIn(t *testing.T) {
	assert.True(t, In("b", "a", "b"))
	assert.False(t, In(3, 1, 2))
}
