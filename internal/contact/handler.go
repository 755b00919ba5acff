// Package contact implements the contact-form intake: validate the message,
// mail it to the clinic operator and send the sender a courtesy copy.
package contact

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashasmiles/clinic-backend/internal/notify"
	"github.com/sashasmiles/clinic-backend/pkg/logging"
)

// Message is a contact-form submission. It is mailed, never persisted.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Handler handles contact-form submissions.
type Handler struct {
	sender        notify.EmailSender
	operatorEmail string
	clinicName    string
	logger        *logging.Logger
}

// NewHandler creates a contact handler.
func NewHandler(sender notify.EmailSender, operatorEmail, clinicName string, logger *logging.Logger) *Handler {
	if clinicName == "" {
		clinicName = "Sasha Smiles"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		sender:        sender,
		operatorEmail: operatorEmail,
		clinicName:    clinicName,
		logger:        logger,
	}
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send handles POST /api/contact.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "invalid request body"})
		return
	}

	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.ToLower(strings.TrimSpace(msg.Email))
	msg.Message = strings.TrimSpace(msg.Message)
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Success: false,
			Message: "name, email, and message are required fields",
		})
		return
	}

	if err := h.sender.Send(r.Context(), h.operatorMessage(msg)); err != nil {
		h.logger.Error("failed to send contact email", "error", err)
		writeJSON(w, http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to send message, please try again later",
		})
		return
	}

	// Courtesy copy failure is logged, never surfaced.
	if err := h.sender.Send(r.Context(), h.courtesyCopy(msg)); err != nil {
		h.logger.Error("failed to send contact courtesy copy", "error", err, "to", msg.Email)
	}

	h.logger.Info("contact message sent", "from", msg.Email)
	writeJSON(w, http.StatusOK, response{Success: true, Message: "your message has been sent successfully"})
}

func (h *Handler) operatorMessage(msg Message) notify.EmailMessage {
	subject := msg.Subject
	if subject == "" {
		subject = "No Subject"
	}
	phone := msg.Phone
	if phone == "" {
		phone = "Not provided"
	}
	body := fmt.Sprintf(`New Contact Form Submission

Name: %s
Email: %s
Phone: %s
Subject: %s

Message:
%s

This message was sent from the contact form on the %s website.`,
		msg.Name, msg.Email, phone, subject, msg.Message, h.clinicName)

	return notify.EmailMessage{
		To:      h.operatorEmail,
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("New Contact Form Submission: %s", subject),
		Body:    body,
	}
}

func (h *Handler) courtesyCopy(msg Message) notify.EmailMessage {
	body := fmt.Sprintf(`Dear %s,

We have received your message and our team will get back to you shortly.

Your Message:
%s

Best regards,
The %s Team`,
		msg.Name, msg.Message, h.clinicName)

	return notify.EmailMessage{
		To:      msg.Email,
		ToName:  msg.Name,
		Subject: fmt.Sprintf("Thank you for contacting %s", h.clinicName),
		Body:    body,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
