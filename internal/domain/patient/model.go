package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table.
type Patient struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	FirstName           string    `db:"first_name" json:"first_name"`
	LastName            string    `db:"last_name" json:"last_name"`
	DateOfBirth         time.Time `db:"date_of_birth" json:"date_of_birth"`
	NationalID          *string   `db:"national_id" json:"national_id,omitempty"`
	Phone               *string   `db:"phone" json:"phone,omitempty"`
	Parity              *int      `db:"parity" json:"parity,omitempty"`
	GestationalAgeWeeks *int      `db:"gestational_age_weeks" json:"gestational_age_weeks,omitempty"`
	CreatedBy           uuid.UUID `db:"created_by" json:"created_by"`
	Active              bool      `db:"active" json:"active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Age returns the patient's age in whole years as of now.
func (p *Patient) Age() int {
	return p.AgeAt(time.Now())
}

// AgeAt returns the patient's age in whole years at the given time.
func (p *Patient) AgeAt(t time.Time) int {
	years := t.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(t) {
		years--
	}
	return years
}
