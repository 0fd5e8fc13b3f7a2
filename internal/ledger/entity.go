// AngelaMos | 2026
// entity.go

package ledger

import (
	"time"
)

const (
	UserActive   = "active"
	UserInactive = "inactive"
)

const (
	SIMAvailable    = "available"
	SIMAssigned     = "assigned"
	SIMInactive     = "inactive"
	SIMOutOfService = "out_of_service"
)

// Assignable reports whether a SIM in this status may be handed out.
func Assignable(status string) bool {
	return status == SIMAvailable || status == SIMAssigned
}

// Holder is the employee side of an assignment as the ledger sees it.
type Holder struct {
	UserID      int64  `db:"user_id"`
	Name        string `db:"name"`
	BiometricID int    `db:"biometric_id"`
	Status      string `db:"status"`
}

// SIM is the inventory side of an assignment as the ledger sees it.
type SIM struct {
	SIMID       int64  `db:"sim_id"`
	PhoneNumber string `db:"phone_number"`
	Provider    string `db:"provider"`
	Status      string `db:"status"`
}

type Assignment struct {
	AssignmentID int64      `db:"assignment_id"`
	UserID       int64      `db:"user_id"`
	SIMID        int64      `db:"sim_id"`
	AssignedAt   time.Time  `db:"assigned_at"`
	UnassignedAt *time.Time `db:"unassigned_at"`
	Active       bool       `db:"active"`
}

// Holding is an active assignment together with the holder's display
// fields, used to build conflict responses.
type Holding struct {
	Assignment
	HolderName        string `db:"holder_name"`
	HolderBiometricID int    `db:"holder_biometric_id"`
}

type AssignmentDetail struct {
	AssignmentID int64      `db:"assignment_id"`
	UserID       int64      `db:"user_id"`
	UserName     string     `db:"user_name"`
	BiometricID  int        `db:"biometric_id"`
	SIMID        int64      `db:"sim_id"`
	PhoneNumber  string     `db:"phone_number"`
	Provider     string     `db:"provider"`
	AssignedAt   time.Time  `db:"assigned_at"`
	UnassignedAt *time.Time `db:"unassigned_at"`
	Active       bool       `db:"active"`
}

type ExitLog struct {
	ExitID         int64     `db:"exit_id"`
	UserID         int64     `db:"user_id"`
	Reason         string    `db:"reason"`
	BiometricID    int       `db:"biometric_id"`
	PhoneNumber    *string   `db:"phone_number"`
	HandledByAdmin string    `db:"handled_by_admin"`
	ExitDate       time.Time `db:"exit_date"`
}

// ExitLogDetail is an exit log row joined with the user's name for listing.
type ExitLogDetail struct {
	ExitLog
	UserName string `db:"user_name"`
}
