// Package mail sends invoice PDFs over SMTP.
package mail

import (
	"context"
	"fmt"
	"io"

	gomail "gopkg.in/gomail.v2"
)

// Sender dials the configured SMTP host per message. The business sends a
// handful of invoices a day; a pooled connection is not worth carrying.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(host string, port int, user, pass, from string) *Sender {
	if from == "" {
		from = user
	}
	return &Sender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// SendInvoice mails the rendered PDF as an attachment. The ctx is checked
// before dialing only; gomail does not support cancellation mid-send.
func (s *Sender) SendInvoice(ctx context.Context, to, invoiceNumber string, pdf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Invoice #%s from Embellish Jewels By Nakul", invoiceNumber))
	m.SetBody("text/plain", fmt.Sprintf(
		"Dear Customer,\n\nThank you for your purchase. Please find your invoice #%s attached.\n\nWarm regards,\nEmbellish Jewels By Nakul",
		invoiceNumber))
	m.AddAlternative("text/html", fmt.Sprintf(
		"<p>Dear Customer,</p><p>Thank you for your purchase. Please find your invoice <b>#%s</b> attached.</p><p>Warm regards,<br>Embellish Jewels By Nakul</p>",
		invoiceNumber))
	m.Attach(fmt.Sprintf("invoice-%s.pdf", invoiceNumber),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
	)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: send invoice %s: %w", invoiceNumber, err)
	}
	return nil
}
