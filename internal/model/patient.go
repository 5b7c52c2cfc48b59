package model

type Patient struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required,numeric,len=10"`
	Address  string `json:"address" validate:"required,max=255"`
}

// Appointment times are kept as the backend's zone-less "2006-01-02T15:04:05" text.
type Appointment struct {
	ID              int64   `json:"id,omitempty"`
	Doctor          Doctor  `json:"doctor"`
	Patient         Patient `json:"patient"`
	AppointmentTime string  `json:"appointmentTime"`
	Status          int     `json:"status"`
}

const (
	AppointmentScheduled = 0
	AppointmentCompleted = 1
)

type Prescription struct {
	ID            string `json:"id,omitempty"`
	PatientName   string `json:"patientName" validate:"required,min=3,max=100"`
	AppointmentID int64  `json:"appointmentId" validate:"required"`
	Medication    string `json:"medication" validate:"required,min=3,max=100"`
	Dosage        string `json:"dosage" validate:"required"`
	DoctorNotes   string `json:"doctorNotes" validate:"max=200"`
}
