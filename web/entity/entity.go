// Package entity defines the request and response shapes of the web layer.
package entity

import (
	"strconv"
	"strings"
)

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"` // Indicates if the operation was successful
	Msg     string `json:"msg"`     // Response message text
	Obj     any    `json:"obj"`     // Optional data object
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   int
	Username string
}

type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type RegisterForm struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// SessionForm creates a race session. Laps is optional and defaults server side.
type SessionForm struct {
	Name       string      `json:"name" form:"name"`
	DriverName string      `json:"driverName" form:"driverName"`
	RaceDate   string      `json:"raceDate" form:"raceDate"`
	Laps       OptionalInt `json:"laps" form:"laps"`
}

// OptionalInt is an integer field that may be left blank. An empty form value or a JSON
// null leaves it unset; gin calls UnmarshalParam for form and query values.
type OptionalInt struct {
	value *int
}

func (o *OptionalInt) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)
	if param == "" {
		o.value = nil
		return nil
	}
	n, err := strconv.Atoi(param)
	if err != nil {
		return err
	}
	o.value = &n
	return nil
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		o.value = nil
		return nil
	}
	return o.UnmarshalParam(strings.Trim(raw, `"`))
}

// Ptr returns the value, or nil when it was left blank.
func (o OptionalInt) Ptr() *int {
	return o.value
}

type RenameForm struct {
	Name string `json:"name" form:"name"`
}

type ChangePasswordForm struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword"`
	NewPassword     string `json:"newPassword" form:"newPassword"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

type DeleteAccountForm struct {
	Confirmation string `json:"confirmation" form:"confirmation"`
}

type CompareForm struct {
	Driver1  string `json:"driver1" form:"driver1"`
	Driver2  string `json:"driver2" form:"driver2"`
	RaceDate string `json:"raceDate" form:"raceDate"`
}
