// AngelaMos | 2026
// dto.go

package employee

import (
	"time"

	"github.com/AcolyteGlobal/SimProj-BE/internal/ledger"
)

type CreateEmployeeRequest struct {
	Name          string `json:"name"           validate:"required,min=1,max=100"`
	Branch        string `json:"branch"         validate:"required,min=1,max=100"`
	Department    string `json:"department"     validate:"max=100"`
	OfficeNumber  string `json:"office_number"  validate:"max=30"`
	OfficialEmail string `json:"official_email" validate:"omitempty,email,max=255"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

type EmployeeResponse struct {
	UserID         int64     `json:"user_id"`
	Name           string    `json:"name"`
	Branch         string    `json:"branch"`
	Department     string    `json:"department"`
	OfficeNumber   string    `json:"office_number"`
	OfficialEmail  *string   `json:"official_email"`
	BiometricID    int       `json:"biometric_id"`
	BiometricCode  string    `json:"biometric_code"`
	Status         string    `json:"status"`
	CurrentPhone   *string   `json:"current_phone"`
	HandledByAdmin string    `json:"handled_by_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListEmployeesParams struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

func (p *ListEmployeesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListEmployeesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToEmployeeResponse(e *Employee) EmployeeResponse {
	return EmployeeResponse{
		UserID:         e.UserID,
		Name:           e.Name,
		Branch:         e.Branch,
		Department:     e.Department,
		OfficeNumber:   e.OfficeNumber,
		OfficialEmail:  e.OfficialEmail,
		BiometricID:    e.BiometricID,
		BiometricCode:  ledger.FormatBiometricID(e.BiometricID),
		Status:         e.Status,
		CurrentPhone:   e.CurrentPhone,
		HandledByAdmin: e.HandledByAdmin,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToEmployeeResponseList(rows []Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToEmployeeResponse(&rows[i]))
	}
	return out
}
