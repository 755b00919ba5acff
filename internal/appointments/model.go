package appointments

import "time"

// DateLayout is the wire format for preferred dates.
const DateLayout = "2006-01-02"

// Appointment is a confirmed booking record.
type Appointment struct {
	ID                string    `json:"id"`
	AppointmentNumber string    `json:"appointmentNumber"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	PreferredDate     time.Time `json:"preferredDate"`
	PreferredTime     string    `json:"preferredTime"`
	Service           string    `json:"service"`
	Message           string    `json:"message,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// BookingRequest is the raw field set submitted by the public booking form.
type BookingRequest struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PreferredDate string `json:"preferredDate"`
	PreferredTime string `json:"preferredTime"`
	Service       string `json:"service"`
	Message       string `json:"message"`
}

// ListFilter controls pagination for List.
type ListFilter struct {
	Offset int
	Limit  int
}
