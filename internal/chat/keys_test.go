package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationKeyOrderIndependent(t *testing.T) {
	cases := []struct {
		a, b string
		want string
	}{
		{"alice", "bob", "alice:bob"},
		{"bob", "alice", "alice:bob"},
		{"u-10", "u-9", "u-10:u-9"},
		{"u-9", "u-10", "u-10:u-9"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ConversationKey(tc.a, tc.b))
	}
}

func TestDepartmentGroupID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Engineering", "dept-engineering"},
		{"  Engineering  ", "dept-engineering"},
		{"Human   Resources", "dept-human-resources"},
		{"human resources", "dept-human-resources"},
		{"Sales", "dept-sales"},
		{"Dept Sales", "dept-dept-sales"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DepartmentGroupID(tc.in), "input %q", tc.in)
	}
}

func TestDepartmentGroupIDDeterministic(t *testing.T) {
	for _, name := range []string{"Engineering", "Human Resources", "Sales"} {
		assert.Equal(t, DepartmentGroupID(name), DepartmentGroupID(name))
	}
}

func TestDepartmentGroupIDDistinguishesSimilarNames(t *testing.T) {
	// A department literally named with a "Dept" word must not share a room
	// with the plain department of the same suffix.
	assert.NotEqual(t, DepartmentGroupID("Sales"), DepartmentGroupID("Dept Sales"))
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "user:u1", UserRoom("u1"))
	assert.Equal(t, "dept:dept-sales", DepartmentRoom("dept-sales"))
}
