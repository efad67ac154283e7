package service

import (
	"bytes"
	"context"
	"coworking/internal/db"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier tells a user about their booking.
type Notifier interface {
	ReservationCreated(ctx context.Context, user db.User, space db.CoworkingSpace, res db.Reservation) error
}

// LogNotifier records the confirmation in the log instead of sending it.
type LogNotifier struct{}

func (LogNotifier) ReservationCreated(ctx context.Context, user db.User, space db.CoworkingSpace, res db.Reservation) error {
	slog.InfoContext(ctx, "email delivery disabled, skipping reservation confirmation",
		"reservation_id", res.ID, "user_id", user.ID)
	return nil
}

type ReservationEmailData struct {
	UserName       string
	ReservationID  int64
	SpaceName      string
	SpaceAddress   string
	StartFormatted string
	EndFormatted   string
	TotalPrice     string
	CurrentYear    int
}

const emailTimeLayout = "02 Jan 2006 15:04 MST"

var reservationEmailHTML = template.Must(template.New("reservation_email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <p>Hello {{.UserName}},</p>
  <p>Your reservation <strong>#{{.ReservationID}}</strong> at <strong>{{.SpaceName}}</strong> is confirmed.</p>
  <table>
    <tr><td>Address</td><td>{{.SpaceAddress}}</td></tr>
    <tr><td>Start</td><td>{{.StartFormatted}}</td></tr>
    <tr><td>End</td><td>{{.EndFormatted}}</td></tr>
    <tr><td>Total</td><td>{{.TotalPrice}}</td></tr>
  </table>
  <p>&copy; {{.CurrentYear}} {{.SpaceName}}</p>
</body>
</html>`))

func newReservationEmailData(user db.User, space db.CoworkingSpace, res db.Reservation) ReservationEmailData {
	return ReservationEmailData{
		UserName:       user.Name,
		ReservationID:  res.ID,
		SpaceName:      space.Name,
		SpaceAddress:   fmt.Sprintf("%s, %s, %s", space.Address, space.City, space.Country),
		StartFormatted: res.StartTime.UTC().Format(emailTimeLayout),
		EndFormatted:   res.EndTime.UTC().Format(emailTimeLayout),
		TotalPrice:     fmt.Sprintf("%.2f", res.TotalPrice),
		CurrentYear:    time.Now().UTC().Year(),
	}
}

// RenderReservationEmail builds the subject, plain text and HTML bodies.
func RenderReservationEmail(user db.User, space db.CoworkingSpace, res db.Reservation) (subject, plain, html string, err error) {
	data := newReservationEmailData(user, space, res)
	subject = fmt.Sprintf("Your reservation at %s is confirmed - #%d", data.SpaceName, data.ReservationID)
	plain = fmt.Sprintf(
		"Hello %s,\n\nYour reservation at %s is confirmed.\n\n"+
			"Reservation details:\n"+
			"Reservation: #%d\n"+
			"Address: %s\n"+
			"Start: %s\n"+
			"End: %s\n"+
			"Total: %s\n",
		data.UserName, data.SpaceName, data.ReservationID, data.SpaceAddress,
		data.StartFormatted, data.EndFormatted, data.TotalPrice,
	)

	var buf bytes.Buffer
	if err := reservationEmailHTML.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render reservation email %d: %w", res.ID, err)
	}
	return subject, plain, buf.String(), nil
}

// SendGridNotifier delivers confirmations through the SendGrid v3 API.
type SendGridNotifier struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridNotifier(apiKey, fromEmail, fromName string) *SendGridNotifier {
	return &SendGridNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (n *SendGridNotifier) ReservationCreated(ctx context.Context, user db.User, space db.CoworkingSpace, res db.Reservation) error {
	subject, plain, html, err := RenderReservationEmail(user, space, res)
	if err != nil {
		return err
	}

	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(user.Name, user.Email)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	response, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", user.Email, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	slog.InfoContext(ctx, "reservation confirmation sent",
		"reservation_id", res.ID, "to", user.Email, "status", response.StatusCode)
	return nil
}
