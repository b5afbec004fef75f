package model

import (
	"errors"
	"strings"
	"time"
)

// RelationKey is the deterministic identity of a teacher-student link.  The
// wire and column format stays "<studentID>_<teacherID>" for compatibility,
// but gluing and splitting happen only here so a delimiter bug cannot creep
// into callers.  Two keys are equal exactly when both ids are equal, which
// is what makes redemption idempotent at the row level.
type RelationKey struct {
	StudentID string
	TeacherID string
}

// ErrBadRelationKey is returned by ParseRelationKey for malformed ids.
var ErrBadRelationKey = errors.New("malformed relation id")

// String renders the composite id as stored in teacher_students.id.
func (k RelationKey) String() string { return k.StudentID + "_" + k.TeacherID }

// ParseRelationKey splits a stored relation id back into its parts.  User
// ids are UUIDs and never contain underscores, so the first separator is
// authoritative; anything without one is rejected.
func ParseRelationKey(id string) (RelationKey, error) {
	student, teacher, ok := strings.Cut(id, "_")
	if !ok || student == "" || teacher == "" {
		return RelationKey{}, ErrBadRelationKey
	}
	return RelationKey{StudentID: student, TeacherID: teacher}, nil
}

// TeacherStudentRelation is a row in `teacher_students`.  Names are
// denormalized at link time so listings do not need a join.
//
// Fields:
//  Key         - teacher_students.id (composite, see RelationKey)
//  TeacherName - teacher_students.teacher_name
//  StudentName - teacher_students.student_name
//  JoinedAt    - teacher_students.joined_at
type TeacherStudentRelation struct {
	Key         RelationKey
	TeacherName string
	StudentName string
	JoinedAt    time.Time
}
