package model

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLinkCode(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	code := GenerateLinkCode("a1b2c3d4-e5f6-7890-abcd-ef1234567890", now)

	assert.True(t, strings.HasPrefix(code, "PROF_"))
	assert.Equal(t, "PROF_A1B2C3", code[:11])

	ts := fmt.Sprintf("%d", now.UnixMilli())
	assert.Equal(t, ts[len(ts)-4:], code[11:])
	assert.Len(t, code, 15)
}

func TestGenerateLinkCodeShortID(t *testing.T) {
	code := GenerateLinkCode("ab", time.Unix(1700000000, 0))
	assert.True(t, strings.HasPrefix(code, "PROF_AB"))
}

func TestFallbackLinkCode(t *testing.T) {
	assert.Equal(t, "PROF_A1B2C3D4", FallbackLinkCode("a1b2c3d4-e5f6-7890-abcd-ef1234567890"))
	assert.Equal(t, "PROF_XY", FallbackLinkCode("xy"))
}

func TestTeacherCodeStates(t *testing.T) {
	now := time.Now().UTC()
	student := "student-1"
	usedAt := now.Add(-time.Hour)

	cases := []struct {
		name       string
		code       TeacherCode
		used       bool
		expired    bool
		redeemable bool
	}{
		{
			name:       "active",
			code:       TeacherCode{ExpiresAt: now.Add(time.Hour)},
			redeemable: true,
		},
		{
			name:    "expired",
			code:    TeacherCode{ExpiresAt: now.Add(-time.Minute)},
			expired: true,
		},
		{
			name:    "expires exactly now",
			code:    TeacherCode{ExpiresAt: now},
			expired: true,
		},
		{
			name: "used before expiry",
			code: TeacherCode{ExpiresAt: now.Add(time.Hour), UsedBy: &student, UsedAt: &usedAt},
			used: true,
		},
		{
			name:    "used and expired",
			code:    TeacherCode{ExpiresAt: now.Add(-time.Minute), UsedBy: &student, UsedAt: &usedAt},
			used:    true,
			expired: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.used, tc.code.Used())
			assert.Equal(t, tc.expired, tc.code.Expired(now))
			assert.Equal(t, tc.redeemable, tc.code.Redeemable(now))
		})
	}
}
