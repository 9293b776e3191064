// Package whatsapp delivers invoice download links over Twilio's
// WhatsApp API.
package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type Client struct {
	rest *twilio.RestClient
	from string
}

// NewClient builds a Twilio-backed sender. from is the sandbox or business
// WhatsApp number, with or without the "whatsapp:" prefix.
func NewClient(accountSID, authToken, from string) *Client {
	return &Client{
		rest: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: withPrefix(from),
	}
}

// SendInvoiceLink messages the customer a greeting plus the invoice PDF as a
// media attachment. phone must be E.164.
func (c *Client) SendInvoiceLink(ctx context.Context, phone, invoiceNumber, pdfURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &openapi.CreateMessageParams{}
	params.SetFrom(c.from)
	params.SetTo(withPrefix(phone))
	params.SetBody(fmt.Sprintf("Hello! Here is your invoice #%s. Thank you for your business!", invoiceNumber))
	params.SetMediaUrl([]string{pdfURL})

	if _, err := c.rest.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("whatsapp: send invoice %s: %w", invoiceNumber, err)
	}
	return nil
}

func withPrefix(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
