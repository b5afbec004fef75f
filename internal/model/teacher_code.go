package model

import (
	"fmt"
	"strings"
	"time"
)

// CodeTTL is how long a freshly issued linking code stays redeemable.
const CodeTTL = 24 * time.Hour

// TeacherCode is a row in the `teacher_codes` table.  A code moves through
// a small state machine: ACTIVE until it is either claimed by a student
// (used_by set, terminal) or expired (expires_at in the past, terminal).
// Issuing a new code pushes every previously active code of the same
// teacher into the expired state, so at most one code per teacher is ever
// redeemable.
//
// Fields:
//  Code      - teacher_codes.code (globally unique, human typeable)
//  TeacherID - teacher_codes.teacher_id
//  ExpiresAt - teacher_codes.expires_at (issued-at + CodeTTL)
//  UsedBy    - teacher_codes.used_by (nullable; student who redeemed)
//  UsedAt    - teacher_codes.used_at (nullable)
//  CreatedAt - teacher_codes.created_at
type TeacherCode struct {
	Code      string
	TeacherID string
	ExpiresAt time.Time
	UsedBy    *string
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Used reports whether the code has been claimed by a student.
func (c TeacherCode) Used() bool { return c.UsedBy != nil }

// Expired reports whether the code's lifetime has passed at the given instant.
func (c TeacherCode) Expired(now time.Time) bool { return !c.ExpiresAt.After(now) }

// Redeemable reports whether a student may still claim the code.
func (c TeacherCode) Redeemable(now time.Time) bool { return !c.Used() && !c.Expired(now) }

// GenerateLinkCode derives a short, typeable linking code from the teacher id
// and the issuing instant: "PROF_" + first 6 chars of the id upper-cased +
// the last 4 digits of the unix-millis timestamp.  The format is collision
// resistant in practice, not unique by construction; the repository repoints
// a colliding row when it happens.
func GenerateLinkCode(teacherID string, now time.Time) string {
	ts := fmt.Sprintf("%d", now.UnixMilli())
	return fmt.Sprintf("PROF_%s%s", strings.ToUpper(prefix(teacherID, 6)), ts[len(ts)-4:])
}

// FallbackLinkCode is the display code returned when a teacher has no active
// row: "PROF_" + first 8 chars of the id upper-cased.
func FallbackLinkCode(teacherID string) string {
	return "PROF_" + strings.ToUpper(prefix(teacherID, 8))
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
