package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_RegisterRequest(t *testing.T) {
	assert.Nil(t, Validate(&RegisterRequest{Name: "Jane Doe", Email: "jane@x.com", Password: "pw12345678"}))

	errs := Validate(&RegisterRequest{Email: "nope", Password: "short"})
	assert.Equal(t, []string{"This field is required."}, errs["name"])
	assert.Equal(t, []string{"Enter a valid email address."}, errs["email"])
	assert.Equal(t, []string{"Ensure this field has at least 8 characters."}, errs["password"])
}

func TestValidate_OptionalPointerFields(t *testing.T) {
	bad := "seniors"
	goal := 1
	errs := Validate(&UpdateProfileRequest{AgeGroup: &bad, DailyGoalMinutes: &goal})
	assert.Contains(t, errs, "age_group")
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 5."}, errs["daily_goal_minutes"])

	assert.Nil(t, Validate(&UpdateProfileRequest{}))
}
