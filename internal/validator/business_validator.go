package validator

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/openedu-labs/lms-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{validate: validator.New()}
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateCourseCreate validates course creation business rules
func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateAssignmentCreate validates assignment creation business rules
func (bv *BusinessValidator) ValidateAssignmentCreate(req *AssignmentCreateRequest) ValidationErrors {
	var errors ValidationErrors
	errors = append(errors, bv.Validate(req)...)

	if req.DueDate != nil && req.DueDate.Before(time.Now()) {
		errors = append(errors, ValidationError{
			Field:   "due_date",
			Message: "due date must be in the future",
			Value:   req.DueDate,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateGrade validates a grading request against the assignment's
// maximum points.
func (bv *BusinessValidator) ValidateGrade(req *GradeRequest, maxPoints int) ValidationErrors {
	var errors ValidationErrors
	errors = append(errors, bv.Validate(req)...)

	if req.Score < 0 || req.Score > float64(maxPoints) {
		errors = append(errors, ValidationError{
			Field:   "score",
			Message: "score must be between 0 and the assignment's max points",
			Value:   req.Score,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateRoleRequest validates a role elevation request. Students cannot
// request the student role and nobody requests a role they already hold.
func (bv *BusinessValidator) ValidateRoleRequest(req *RoleRequestCreateRequest, current models.UserRole) ValidationErrors {
	var errors ValidationErrors
	errors = append(errors, bv.Validate(req)...)

	requested := models.NormalizeRole(req.RequestedRole)
	if requested == models.RoleStudent {
		errors = append(errors, ValidationError{
			Field:   "requested_role",
			Message: "only elevated roles can be requested",
			Value:   req.RequestedRole,
			Rule:    "business_logic",
		})
	}
	if requested == current {
		errors = append(errors, ValidationError{
			Field:   "requested_role",
			Message: "role is already assigned",
			Value:   req.RequestedRole,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateBroadcast validates a role-targeted broadcast request.
func (bv *BusinessValidator) ValidateBroadcast(req *MessageBroadcastRequest) ValidationErrors {
	var errors ValidationErrors
	errors = append(errors, bv.Validate(req)...)

	if _, ok := models.ParseRole(req.Audience); !ok {
		errors = append(errors, ValidationError{
			Field:   "audience",
			Message: "audience must be a known role",
			Value:   req.Audience,
			Rule:    "business_logic",
		})
	}

	return errors
}
