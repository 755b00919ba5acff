package telecrm

import (
	"context"
	"strings"

	"github.com/sashasmiles/clinic-backend/internal/appointments"
)

// LeadChannel pushes confirmed bookings into TeleCRM as leads. It implements
// the notification channel capability used by the fanout.
type LeadChannel struct {
	client     *Client
	mapper     *FieldMapper
	leadSource string
}

// NewLeadChannel creates the CRM lead channel.
func NewLeadChannel(client *Client, mapper *FieldMapper, leadSource string) *LeadChannel {
	if mapper == nil {
		mapper = NewFieldMapper(nil)
	}
	if leadSource == "" {
		leadSource = "SashaDental-webform"
	}
	return &LeadChannel{client: client, mapper: mapper, leadSource: leadSource}
}

// Name identifies the channel in logs and metrics.
func (c *LeadChannel) Name() string { return "crm_lead" }

// Notify maps the appointment into TeleCRM's field vocabulary and creates the
// lead. Mapping is total; only the HTTP call can fail.
func (c *LeadChannel) Notify(ctx context.Context, appt *appointments.Appointment) error {
	fields := LeadFields{
		Name:                   appt.FullName,
		Phone:                  c.mapper.FormatPhone(appt.Phone),
		Email:                  appt.Email,
		AppointmentDateAndTime: c.mapper.FormatDateTime(appt.PreferredDate, appt.PreferredTime),
		LeadSource:             c.leadSource,
		ClientConcerns:         c.mapper.MapServiceToConcern(appt.Service),
	}
	if note := strings.TrimSpace(appt.Message); note != "" {
		fields.Note = note
	}
	return c.client.CreateLead(ctx, fields)
}
