package service

import (
	"context"
	"coworking/internal/db"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
)

// SMTPNotifier delivers confirmations through a plain SMTP relay.
type SMTPNotifier struct {
	addr     string
	auth     smtp.Auth
	from     string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(host, port, user, pass, from string) *SMTPNotifier {
	if from == "" {
		from = user
	}
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPNotifier{
		addr:     net.JoinHostPort(host, port),
		auth:     auth,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

func (n *SMTPNotifier) ReservationCreated(ctx context.Context, user db.User, space db.CoworkingSpace, res db.Reservation) error {
	subject, plain, _, err := RenderReservationEmail(user, space, res)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	msg.WriteString("From: " + stripLineBreaks(n.from) + "\r\n")
	msg.WriteString("To: " + stripLineBreaks(user.Email) + "\r\n")
	msg.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(strings.ReplaceAll(plain, "\n", "\r\n"))

	if err := n.sendMail(n.addr, n.auth, n.from, []string{user.Email}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	slog.InfoContext(ctx, "reservation confirmation sent", "reservation_id", res.ID, "to", user.Email, "via", "smtp")
	return nil
}

// stripLineBreaks keeps a header value on one line.
func stripLineBreaks(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}
