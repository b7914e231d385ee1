package transport

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MessageSender delivers the composed command text to the caregiver's SMS
// endpoint.
type MessageSender interface {
	SendText(ctx context.Context, body string) error
}

// TwilioSender implements MessageSender on the Twilio messaging API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
	to     string
}

// NewTwilioSender creates a sender for the given account and number pair.
func NewTwilioSender(accountSID, authToken, from, to string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from, to: to}
}

// SendText submits one message.
func (t *TwilioSender) SendText(ctx context.Context, body string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(t.to)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	return nil
}
