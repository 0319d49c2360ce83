package tracking

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Status represents a worker's reported enter/exit state
type Status string

const (
	StatusEnter   Status = "Enter"
	StatusExit    Status = "Exit"
	StatusUnknown Status = "Unknown"
)

// IsValid checks whether the status is one of the known values
func (s Status) IsValid() bool {
	switch s {
	case StatusEnter, StatusExit, StatusUnknown:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// WorkerReport is one inbound message describing a worker's current
// room, floor and enter/exit status. All fields are required; Floor is
// a pointer so that an absent field can be told apart from floor zero.
type WorkerReport struct {
	WorkerID   string `json:"workerId" validate:"required"`
	WorkerName string `json:"workerName" validate:"required"`
	Room       string `json:"room" validate:"required"`
	Floor      *int   `json:"floor" validate:"required"`
	Status     Status `json:"status" validate:"required,oneof=Enter Exit Unknown"`
}

// newReportValidator builds the struct validator used by the dispatcher.
// Field names in validation errors follow the JSON wire names so that
// producers see the key they actually sent.
func newReportValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
