package models

// Action names a category of privileged operation, used as the key into
// the static role capability table.
type Action string

const (
	ActionCourseCreate     Action = "course:create"
	ActionCourseUpdate     Action = "course:update"
	ActionCourseDelete     Action = "course:delete"
	ActionAssignmentCreate Action = "assignment:create"
	ActionAssignmentUpdate Action = "assignment:update"
	ActionAssignmentDelete Action = "assignment:delete"
	ActionSubmissionGrade  Action = "submission:grade"
	ActionMessageSend      Action = "message:send"
	ActionMessageBroadcast Action = "message:broadcast"
	ActionGradebookExport  Action = "gradebook:export"
	ActionAdminUsers       Action = "admin:users"
	ActionAdminRoles       Action = "admin:roles"
	ActionAdminGroups      Action = "admin:groups"
)

// capabilities is the fixed role capability table. It is compiled in, not
// loaded from the database; ownership rules (course delete by owner,
// grading by assignment creator) are layered on top by the services.
var capabilities = map[Action]map[UserRole]bool{
	ActionCourseCreate: {RoleAdmin: true, RoleInstructor: true, RoleContentCreator: true},
	ActionCourseUpdate: {RoleAdmin: true, RoleInstructor: true, RoleContentCreator: true},
	ActionCourseDelete: {RoleAdmin: true, RoleInstructor: true, RoleContentCreator: true},

	ActionAssignmentCreate: {RoleAdmin: true, RoleInstructor: true},
	ActionAssignmentUpdate: {RoleAdmin: true, RoleInstructor: true},
	ActionAssignmentDelete: {RoleAdmin: true, RoleInstructor: true},

	ActionSubmissionGrade: {RoleAdmin: true, RoleInstructor: true},

	ActionMessageSend:      {RoleAdmin: true, RoleInstructor: true, RoleContentCreator: true, RoleStudent: true},
	ActionMessageBroadcast: {RoleAdmin: true, RoleInstructor: true},

	ActionGradebookExport: {RoleAdmin: true, RoleInstructor: true},

	ActionAdminUsers:  {RoleAdmin: true},
	ActionAdminRoles:  {RoleAdmin: true},
	ActionAdminGroups: {RoleAdmin: true},
}

// Permits reports whether role may perform action. Unknown actions are
// denied for every role.
func Permits(role UserRole, action Action) bool {
	allowed, ok := capabilities[action]
	if !ok {
		return false
	}
	return allowed[role]
}
