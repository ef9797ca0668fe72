package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"

	"hostel/internal/domain"
	"hostel/internal/logger"

	gomail "gopkg.in/gomail.v2"
)

const confirmationTemplate = `<html>
<body>
  <p>Hello {{.GuestName}},</p>
  <p>Your hostel booking is confirmed.</p>
  <ul>
    <li>Reference: <b>{{.BookingReference}}</b></li>
    <li>Access code: <b>{{.AccessCode}}</b></li>
    <li>Check-in: {{.CheckIn}}</li>
    <li>Check-out: {{.CheckOut}}</li>
    <li>Beds: {{.Beds}}</li>
    <li>Total: {{.Total}}</li>
  </ul>
  <p>Keep the access code private; anyone holding it can look up this booking.</p>
</body>
</html>`

// EmailSender delivers booking confirmations over SMTP.
type EmailSender struct {
	host string
	port int
	user string
	pass string
	from string
	tmpl *template.Template
}

func NewEmailSender(host string, port int, user, pass, from string) *EmailSender {
	return &EmailSender{
		host: host,
		port: port,
		user: user,
		pass: pass,
		from: from,
		tmpl: template.Must(template.New("confirmation").Parse(confirmationTemplate)),
	}
}

func (s *EmailSender) SendBookingConfirmation(ctx context.Context, b *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	beds := ""
	for i, bed := range b.Beds {
		if i > 0 {
			beds += ", "
		}
		beds += fmt.Sprintf("%s (room %s)", bed.BedNumber, bed.RoomNumber)
	}

	var body bytes.Buffer
	err := s.tmpl.Execute(&body, map[string]string{
		"GuestName":        b.GuestName,
		"BookingReference": b.BookingReference,
		"AccessCode":       b.AccessCode,
		"CheckIn":          b.CheckInDate.Format("2006-01-02"),
		"CheckOut":         b.CheckOutDate.Format("2006-01-02"),
		"Beds":             beds,
		"Total":            b.TotalPrice.StringFixed(2),
	})
	if err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", b.GuestEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Booking confirmed: %s", b.BookingReference))
	msg.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	dialer.TLSConfig = &tls.Config{ServerName: s.host}

	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send confirmation to %s: %w", b.GuestEmail, err)
	}

	logger.InfoLogger.Infof("confirmation email sent to %s for %s", b.GuestEmail, b.BookingReference)
	return nil
}

// LogSender is the development fallback when SMTP is not configured.
type LogSender struct{}

func (LogSender) SendBookingConfirmation(_ context.Context, b *domain.Booking) error {
	logger.InfoLogger.Infof("confirmation for %s (access code %s) not emailed: SMTP not configured", b.BookingReference, b.AccessCode)
	return nil
}
