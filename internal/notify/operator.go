package notify

import (
	"context"
	"fmt"

	"github.com/sashasmiles/clinic-backend/internal/appointments"
)

// OperatorEmailChannel alerts the clinic operator about a new booking.
type OperatorEmailChannel struct {
	sender        EmailSender
	operatorEmail string
	clinicName    string
}

// NewOperatorEmailChannel creates the operator alert channel.
func NewOperatorEmailChannel(sender EmailSender, operatorEmail, clinicName string) *OperatorEmailChannel {
	if clinicName == "" {
		clinicName = "Sasha Smiles"
	}
	return &OperatorEmailChannel{
		sender:        sender,
		operatorEmail: operatorEmail,
		clinicName:    clinicName,
	}
}

// Name identifies the channel in logs and metrics.
func (c *OperatorEmailChannel) Name() string { return "operator_email" }

// Notify renders and sends the new-appointment alert.
func (c *OperatorEmailChannel) Notify(ctx context.Context, appt *appointments.Appointment) error {
	if c.sender == nil {
		return fmt.Errorf("notify: operator email sender not configured")
	}
	if c.operatorEmail == "" {
		return fmt.Errorf("notify: operator email address not configured")
	}

	formattedDate := appt.PreferredDate.Format(dateFormat)

	messageLine := ""
	if appt.Message != "" {
		messageLine = fmt.Sprintf("Message: %s\n", appt.Message)
	}

	body := fmt.Sprintf(`New Appointment Request

Appointment Number: %s
Full Name: %s
Email: %s
Phone: %s
Preferred Date: %s
Preferred Time: %s
Service: %s
%sSubmitted: %s

Action Required: Please review and confirm this appointment.`,
		appt.AppointmentNumber,
		appt.FullName,
		appt.Email,
		appt.Phone,
		formattedDate,
		appt.PreferredTime,
		appt.Service,
		messageLine,
		appt.CreatedAt.Format("January 2, 2006 at 3:04 PM"),
	)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #0067AC;">New Appointment Request</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  %s%s%s%s%s%s%s%s%s
</table>
<p style="color: #FF642F; font-weight: bold;">Action Required: Please review and confirm this appointment.</p>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">This is an automated notification from the appointment system.</p>
</div>`,
		detailRow("Appointment Number", appt.AppointmentNumber),
		detailRow("Full Name", appt.FullName),
		detailRow("Email", appt.Email),
		detailRow("Phone", appt.Phone),
		detailRow("Preferred Date", formattedDate),
		detailRow("Preferred Time", appt.PreferredTime),
		detailRow("Service", appt.Service),
		optionalRow("Message", appt.Message),
		detailRow("Submitted", appt.CreatedAt.Format("January 2, 2006 at 3:04 PM")),
	)

	return c.sender.Send(ctx, EmailMessage{
		To:      c.operatorEmail,
		ToName:  c.clinicName,
		ReplyTo: appt.Email,
		Subject: fmt.Sprintf("New Appointment Request - %s", appt.AppointmentNumber),
		Body:    body,
		HTML:    html,
	})
}

var _ Channel = (*OperatorEmailChannel)(nil)
