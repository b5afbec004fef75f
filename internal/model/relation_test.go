package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationKeyString(t *testing.T) {
	k := RelationKey{StudentID: "s1", TeacherID: "t1"}
	assert.Equal(t, "s1_t1", k.String())
}

func TestParseRelationKeyRoundtrip(t *testing.T) {
	orig := RelationKey{StudentID: "student-uuid", TeacherID: "teacher-uuid"}
	parsed, err := ParseRelationKey(orig.String())
	require.NoError(t, err)
	assert.Equal(t, orig, parsed)
}

func TestParseRelationKeyMalformed(t *testing.T) {
	for _, id := range []string{"", "noseparator", "_teacher", "student_"} {
		_, err := ParseRelationKey(id)
		assert.ErrorIs(t, err, ErrBadRelationKey, "id %q", id)
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleTeacher, ParseRole("professor"))
	assert.Equal(t, RoleStudent, ParseRole("aluno"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
	assert.Equal(t, RoleUnknown, ParseRole("admin"))

	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, RoleUnknown.Valid())
}
