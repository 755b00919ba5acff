package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/sashasmiles/clinic-backend/internal/appointments"
)

// dateFormat renders preferred dates the way both emails show them.
const dateFormat = "Monday, January 2, 2006"

// PatientEmailChannel sends the booking confirmation to the patient.
type PatientEmailChannel struct {
	sender     EmailSender
	clinicName string
}

// NewPatientEmailChannel creates the patient confirmation channel.
func NewPatientEmailChannel(sender EmailSender, clinicName string) *PatientEmailChannel {
	if clinicName == "" {
		clinicName = "Sasha Smiles"
	}
	return &PatientEmailChannel{sender: sender, clinicName: clinicName}
}

// Name identifies the channel in logs and metrics.
func (c *PatientEmailChannel) Name() string { return "patient_email" }

// Notify renders and sends the confirmation email.
func (c *PatientEmailChannel) Notify(ctx context.Context, appt *appointments.Appointment) error {
	if c.sender == nil {
		return fmt.Errorf("notify: patient email sender not configured")
	}

	formattedDate := appt.PreferredDate.Format(dateFormat)

	messageLine := ""
	if appt.Message != "" {
		messageLine = fmt.Sprintf("Message: %s\n", appt.Message)
	}

	body := fmt.Sprintf(`Hello %s,

Thank you for booking an appointment with us! Your appointment has been confirmed.

Appointment Number: %s
Name: %s
Email: %s
Phone: %s
Preferred Date: %s
Preferred Time: %s
Service: %s
%s
We look forward to seeing you on %s. Please arrive 10 minutes before your scheduled appointment time.

Best regards,
The %s Team`,
		appt.FullName,
		appt.AppointmentNumber,
		appt.FullName,
		appt.Email,
		appt.Phone,
		formattedDate,
		appt.PreferredTime,
		appt.Service,
		messageLine,
		formattedDate,
		c.clinicName,
	)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #0067AC;">%s — Appointment Confirmation</h2>
<p>Hello <strong>%s</strong>,</p>
<p>Thank you for booking an appointment with us! Your appointment has been confirmed.</p>
<table style="border-collapse: collapse; margin: 20px 0;">
  %s%s%s%s%s%s%s%s
</table>
<p><strong>Status:</strong> <span style="color: #10b981; font-weight: bold;">Confirmed</span></p>
<p>We look forward to seeing you on %s. Please arrive 10 minutes before your scheduled appointment time.</p>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">This is an automated email. Please do not reply to this message.</p>
</div>`,
		c.clinicName,
		html.EscapeString(appt.FullName),
		detailRow("Appointment Number", appt.AppointmentNumber),
		detailRow("Name", appt.FullName),
		detailRow("Email", appt.Email),
		detailRow("Phone", appt.Phone),
		detailRow("Preferred Date", formattedDate),
		detailRow("Preferred Time", appt.PreferredTime),
		detailRow("Service", appt.Service),
		optionalRow("Message", appt.Message),
		formattedDate,
	)

	return c.sender.Send(ctx, EmailMessage{
		To:      appt.Email,
		ToName:  appt.FullName,
		Subject: fmt.Sprintf("Appointment Confirmation - %s", appt.AppointmentNumber),
		Body:    body,
		HTML:    html,
	})
}

// detailRow renders one label/value table row. Values are form input and must
// not reach the HTML body unescaped.
func detailRow(label, value string) string {
	return fmt.Sprintf(`<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`, label, html.EscapeString(value))
}

func optionalRow(label, value string) string {
	if value == "" {
		return ""
	}
	return detailRow(label, value)
}

var _ Channel = (*PatientEmailChannel)(nil)
