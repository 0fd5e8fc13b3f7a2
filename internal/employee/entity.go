// AngelaMos | 2026
// entity.go

package employee

import (
	"time"
)

// Employee is a row of the users table. CurrentPhone is filled by reads
// that join the active assignment.
type Employee struct {
	UserID         int64     `db:"user_id"`
	Name           string    `db:"name"`
	Branch         string    `db:"branch"`
	Department     string    `db:"department"`
	OfficeNumber   string    `db:"office_number"`
	OfficialEmail  *string   `db:"official_email"`
	BiometricID    int       `db:"biometric_id"`
	Status         string    `db:"status"`
	HandledByAdmin string    `db:"handled_by_admin"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	CurrentPhone   *string   `db:"current_phone"`
}
