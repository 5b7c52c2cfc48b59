package model

type Doctor struct {
	ID             int64    `json:"id,omitempty"`
	Name           string   `json:"name" validate:"required,max=100"`
	Specialty      string   `json:"specialty" validate:"required,max=50"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password,omitempty" validate:"required,min=6"`
	Phone          string   `json:"phone" validate:"required,numeric,len=10"`
	AvailableTimes []string `json:"availableTimes" validate:"dive,required"`
}

type DoctorFilter struct {
	Name      string `validate:"max=100"`
	Time      string `validate:"omitempty,oneof=AM PM"`
	Specialty string `validate:"max=50"`
}

func (f DoctorFilter) IsEmpty() bool {
	return f.Name == "" && f.Time == "" && f.Specialty == ""
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
