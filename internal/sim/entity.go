// AngelaMos | 2026
// entity.go

package sim

import (
	"time"
)

type SIM struct {
	SIMID             int64     `db:"sim_id"`
	PhoneNumber       string    `db:"phone_number"`
	Provider          string    `db:"provider"`
	Status            string    `db:"status"`
	HandledByAdmin    string    `db:"handled_by_admin"`
	AddedDate         time.Time `db:"added_date"`
	UpdatedAt         time.Time `db:"updated_at"`
	HolderName        *string   `db:"holder_name"`
	HolderBiometricID *int      `db:"holder_biometric_id"`
}
