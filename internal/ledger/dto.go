// AngelaMos | 2026
// dto.go

package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// BiometricKey accepts the biometric id as either a JSON string ("BIO007")
// or a bare JSON number (7).
type BiometricKey string

func (k *BiometricKey) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*k = BiometricKey(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("biometric_id must be a string or number: %w", err)
	}
	*k = BiometricKey(n.String())
	return nil
}

type AssignRequest struct {
	BiometricID BiometricKey `json:"biometric_id" validate:"required,max=16"`
	PhoneNumber string       `json:"phone_number" validate:"required,number,max=20"`
	Force       bool         `json:"force"`
}

type SwapRequest struct {
	BiometricID BiometricKey `json:"biometric_id" validate:"required,max=16"`
	PhoneNumber string       `json:"phone_number" validate:"required,number,max=20"`
	Force       bool         `json:"force"`
}

type ExitRequest struct {
	BiometricID BiometricKey `json:"biometric_id" validate:"required,max=16"`
	Reason      string       `json:"reason"       validate:"required,min=1,max=500"`
}

type AssignmentResponse struct {
	AssignmentID  int64      `json:"assignment_id"`
	UserID        int64      `json:"user_id"`
	UserName      string     `json:"user_name"`
	BiometricID   int        `json:"biometric_id"`
	BiometricCode string     `json:"biometric_code"`
	SIMID         int64      `json:"sim_id"`
	PhoneNumber   string     `json:"phone_number"`
	Provider      string     `json:"provider"`
	AssignedAt    time.Time  `json:"assigned_at"`
	UnassignedAt  *time.Time `json:"unassigned_at"`
	Active        bool       `json:"active"`
}

type DisplacedHolder struct {
	UserID        int64  `json:"user_id"`
	Name          string `json:"name"`
	BiometricID   int    `json:"biometric_id"`
	BiometricCode string `json:"biometric_code"`
}

type AssignResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	Released   []string           `json:"released_phone_numbers"`
	Displaced  *DisplacedHolder   `json:"displaced_holder,omitempty"`
}

type ExitLogResponse struct {
	ExitID         int64     `json:"exit_id"`
	UserID         int64     `json:"user_id"`
	UserName       string    `json:"user_name,omitempty"`
	Reason         string    `json:"reason"`
	BiometricID    int       `json:"biometric_id"`
	BiometricCode  string    `json:"biometric_code"`
	PhoneNumber    *string   `json:"phone_number"`
	HandledByAdmin string    `json:"handled_by_admin"`
	ExitDate       time.Time `json:"exit_date"`
}

type ExitResponse struct {
	ExitLog ExitLogResponse `json:"exit_log"`
	Purged  []string        `json:"purged_phone_numbers"`
}

func ToAssignmentResponse(d *AssignmentDetail) AssignmentResponse {
	return AssignmentResponse{
		AssignmentID:  d.AssignmentID,
		UserID:        d.UserID,
		UserName:      d.UserName,
		BiometricID:   d.BiometricID,
		BiometricCode: FormatBiometricID(d.BiometricID),
		SIMID:         d.SIMID,
		PhoneNumber:   d.PhoneNumber,
		Provider:      d.Provider,
		AssignedAt:    d.AssignedAt,
		UnassignedAt:  d.UnassignedAt,
		Active:        d.Active,
	}
}

func ToAssignmentResponseList(rows []AssignmentDetail) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToAssignmentResponse(&rows[i]))
	}
	return out
}

func ToAssignResponse(r *AssignResult) AssignResponse {
	resp := AssignResponse{
		Assignment: ToAssignmentResponse(r.Assignment),
		Released:   r.Released,
	}
	if resp.Released == nil {
		resp.Released = []string{}
	}
	if r.Displaced != nil {
		resp.Displaced = &DisplacedHolder{
			UserID:        r.Displaced.UserID,
			Name:          r.Displaced.HolderName,
			BiometricID:   r.Displaced.HolderBiometricID,
			BiometricCode: FormatBiometricID(r.Displaced.HolderBiometricID),
		}
	}
	return resp
}

func ToExitLogResponse(e *ExitLog, userName string) ExitLogResponse {
	return ExitLogResponse{
		ExitID:         e.ExitID,
		UserID:         e.UserID,
		UserName:       userName,
		Reason:         e.Reason,
		BiometricID:    e.BiometricID,
		BiometricCode:  FormatBiometricID(e.BiometricID),
		PhoneNumber:    e.PhoneNumber,
		HandledByAdmin: e.HandledByAdmin,
		ExitDate:       e.ExitDate,
	}
}

func ToExitResponse(r *ExitResult) ExitResponse {
	resp := ExitResponse{
		ExitLog: ToExitLogResponse(r.ExitLog, ""),
		Purged:  r.Purged,
	}
	if resp.Purged == nil {
		resp.Purged = []string{}
	}
	return resp
}

func ToExitLogResponseList(rows []ExitLogDetail) []ExitLogResponse {
	out := make([]ExitLogResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToExitLogResponse(&rows[i].ExitLog, rows[i].UserName))
	}
	return out
}
