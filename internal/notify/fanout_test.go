package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sashasmiles/clinic-backend/internal/appointments"
)

type fakeChannel struct {
	name  string
	err   error
	delay time.Duration

	mu    sync.Mutex
	calls int
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Notify(ctx context.Context, appt *appointments.Appointment) error {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.err
}

func (c *fakeChannel) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// recordingSender captures messages for assertions on the email channels.
type recordingSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EmailMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

func sampleAppointment() *appointments.Appointment {
	date, _ := time.Parse(appointments.DateLayout, "2026-09-15")
	return &appointments.Appointment{
		ID:                "3f1c9a2e-0000-4000-8000-000000000001",
		AppointmentNumber: "APT-000042",
		FullName:          "Asha Rao",
		Email:             "asha.rao@example.com",
		Phone:             "+919876543210",
		PreferredDate:     date,
		PreferredTime:     "10:30",
		Service:           "Teeth Whitening",
		Message:           "Prefer a morning slot",
		CreatedAt:         time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestFanoutRunsAllChannels(t *testing.T) {
	a := &fakeChannel{name: "a"}
	b := &fakeChannel{name: "b"}
	c := &fakeChannel{name: "c"}

	f := NewFanout([]Channel{a, b, c}, nil, nil, time.Second)
	f.Dispatch(sampleAppointment())
	f.Wait()

	assert.Equal(t, 1, a.callCount())
	assert.Equal(t, 1, b.callCount())
	assert.Equal(t, 1, c.callCount())
}

func TestFanoutIsolatesFailures(t *testing.T) {
	failing := &fakeChannel{name: "crm_lead", err: errors.New("upstream 502")}
	ok := &fakeChannel{name: "patient_email"}

	f := NewFanout([]Channel{failing, ok}, nil, nil, time.Second)
	f.Dispatch(sampleAppointment())
	f.Wait()

	assert.Equal(t, 1, failing.callCount())
	assert.Equal(t, 1, ok.callCount())
}

func TestFanoutDispatchDoesNotBlock(t *testing.T) {
	slow := &fakeChannel{name: "slow", delay: 200 * time.Millisecond}

	f := NewFanout([]Channel{slow}, nil, nil, time.Second)
	start := time.Now()
	f.Dispatch(sampleAppointment())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 100*time.Millisecond, "Dispatch must return before channels finish")
	f.Wait()
	assert.Equal(t, 1, slow.callCount())
}

func TestFanoutTimeoutCancelsChannel(t *testing.T) {
	stuck := &fakeChannel{name: "stuck", delay: time.Minute}

	f := NewFanout([]Channel{stuck}, nil, nil, 50*time.Millisecond)
	f.Dispatch(sampleAppointment())

	done := make(chan struct{})
	go func() {
		f.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not observe the timeout")
	}
	assert.Zero(t, stuck.callCount())
}

func TestPatientEmailChannel(t *testing.T) {
	sender := &recordingSender{}
	ch := NewPatientEmailChannel(sender, "Sasha Smiles")

	require.Equal(t, "patient_email", ch.Name())
	require.NoError(t, ch.Notify(context.Background(), sampleAppointment()))

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, "asha.rao@example.com", msg.To)
	assert.Equal(t, "Appointment Confirmation - APT-000042", msg.Subject)
	assert.Contains(t, msg.Body, "APT-000042")
	assert.Contains(t, msg.Body, "Tuesday, September 15, 2026")
	assert.Contains(t, msg.Body, "Prefer a morning slot")
	assert.Contains(t, msg.HTML, "Teeth Whitening")
}

func TestPatientEmailOmitsEmptyMessage(t *testing.T) {
	sender := &recordingSender{}
	ch := NewPatientEmailChannel(sender, "")

	appt := sampleAppointment()
	appt.Message = ""
	require.NoError(t, ch.Notify(context.Background(), appt))

	msg := sender.messages()[0]
	assert.NotContains(t, msg.Body, "Message:")
	assert.NotContains(t, msg.HTML, "<strong>Message:</strong>")
}

func assertEscapedEmail(t *testing.T, ch Channel, sender *recordingSender) {
	t.Helper()
	appt := sampleAppointment()
	appt.FullName = `Asha <script>alert("x")</script> Rao`
	appt.Message = "morning <b>slot</b>"

	require.NoError(t, ch.Notify(context.Background(), appt))

	msg := sender.messages()[0]
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "morning &lt;b&gt;slot&lt;/b&gt;")
	// The plain-text body carries the input as-is.
	assert.Contains(t, msg.Body, `<script>alert("x")</script>`)
}

func TestPatientEmailEscapesHTMLValues(t *testing.T) {
	sender := &recordingSender{}
	assertEscapedEmail(t, NewPatientEmailChannel(sender, ""), sender)
}

func TestOperatorEmailEscapesHTMLValues(t *testing.T) {
	sender := &recordingSender{}
	assertEscapedEmail(t, NewOperatorEmailChannel(sender, "ops@example.com", ""), sender)
}

func TestOperatorEmailChannel(t *testing.T) {
	sender := &recordingSender{}
	ch := NewOperatorEmailChannel(sender, "frontdesk@sashasmiles.example", "Sasha Smiles")

	require.Equal(t, "operator_email", ch.Name())
	require.NoError(t, ch.Notify(context.Background(), sampleAppointment()))

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, "frontdesk@sashasmiles.example", msg.To)
	assert.Equal(t, "asha.rao@example.com", msg.ReplyTo)
	assert.True(t, strings.HasPrefix(msg.Subject, "New Appointment Request - "))
	assert.Contains(t, msg.Body, "APT-000042")
	assert.Contains(t, msg.Body, "+919876543210")
}

func TestEmailChannelsFailWithoutSender(t *testing.T) {
	appt := sampleAppointment()
	assert.Error(t, NewPatientEmailChannel(nil, "").Notify(context.Background(), appt))
	assert.Error(t, NewOperatorEmailChannel(nil, "ops@example.com", "").Notify(context.Background(), appt))
}
