// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("query_status", validateQueryStatus)
		_ = v.RegisterValidation("manager_decision", validateManagerDecision)
	}
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "auditor", "employee", "manager", "admin":
		return true
	}
	return false
}

func validateQueryStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "draft", "assigned", "employee_submitted",
		"manager_approved", "manager_rejected", "closed", "reopened":
		return true
	}
	return false
}

func validateManagerDecision(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "approve", "reject":
		return true
	}
	return false
}
