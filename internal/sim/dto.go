// AngelaMos | 2026
// dto.go

package sim

import (
	"time"

	"github.com/AcolyteGlobal/SimProj-BE/internal/ledger"
)

type CreateSIMRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,number,min=3,max=20"`
	Provider    string `json:"provider"     validate:"max=50"`
}

// UpdateStatusRequest leaves out "assigned", which only the ledger sets.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available inactive out_of_service"`
}

type Holder struct {
	Name          string `json:"name"`
	BiometricID   int    `json:"biometric_id"`
	BiometricCode string `json:"biometric_code"`
}

type SIMResponse struct {
	SIMID          int64     `json:"sim_id"`
	PhoneNumber    string    `json:"phone_number"`
	Provider       string    `json:"provider"`
	Status         string    `json:"status"`
	Holder         *Holder   `json:"holder"`
	HandledByAdmin string    `json:"handled_by_admin"`
	AddedDate      time.Time `json:"added_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListSIMsParams struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

func (p *ListSIMsParams) Normalize() {
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

func (p *ListSIMsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToSIMResponse(s *SIM) SIMResponse {
	resp := SIMResponse{
		SIMID:          s.SIMID,
		PhoneNumber:    s.PhoneNumber,
		Provider:       s.Provider,
		Status:         s.Status,
		HandledByAdmin: s.HandledByAdmin,
		AddedDate:      s.AddedDate,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.HolderName != nil && s.HolderBiometricID != nil {
		resp.Holder = &Holder{
			Name:          *s.HolderName,
			BiometricID:   *s.HolderBiometricID,
			BiometricCode: ledger.FormatBiometricID(*s.HolderBiometricID),
		}
	}
	return resp
}

func ToSIMResponseList(rows []SIM) []SIMResponse {
	out := make([]SIMResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToSIMResponse(&rows[i]))
	}
	return out
}
