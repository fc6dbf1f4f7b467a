package models

import "testing"

func TestPermits(t *testing.T) {
	tests := []struct {
		role   UserRole
		action Action
		want   bool
	}{
		{RoleStudent, ActionCourseCreate, false},
		{RoleStudent, ActionMessageSend, true},
		{RoleStudent, ActionMessageBroadcast, false},
		{RoleStudent, ActionSubmissionGrade, false},
		{RoleStudent, ActionAdminUsers, false},

		{RoleInstructor, ActionCourseCreate, true},
		{RoleInstructor, ActionAssignmentCreate, true},
		{RoleInstructor, ActionSubmissionGrade, true},
		{RoleInstructor, ActionMessageBroadcast, true},
		{RoleInstructor, ActionGradebookExport, true},
		{RoleInstructor, ActionAdminUsers, false},
		{RoleInstructor, ActionAdminRoles, false},

		{RoleContentCreator, ActionCourseCreate, true},
		{RoleContentCreator, ActionCourseUpdate, true},
		{RoleContentCreator, ActionAssignmentCreate, false},
		{RoleContentCreator, ActionSubmissionGrade, false},

		{RoleAdmin, ActionCourseDelete, true},
		{RoleAdmin, ActionSubmissionGrade, true},
		{RoleAdmin, ActionAdminUsers, true},
		{RoleAdmin, ActionAdminRoles, true},
		{RoleAdmin, ActionAdminGroups, true},
	}

	for _, tt := range tests {
		if got := Permits(tt.role, tt.action); got != tt.want {
			t.Errorf("Permits(%s, %s) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestPermitsUnknownActionDenied(t *testing.T) {
	if Permits(RoleAdmin, Action("course:publish")) {
		t.Error("unknown action must be denied even for admin")
	}
}

func TestPermitsUnknownRoleDenied(t *testing.T) {
	if Permits(UserRole("superuser"), ActionCourseCreate) {
		t.Error("unknown role must be denied")
	}
}
