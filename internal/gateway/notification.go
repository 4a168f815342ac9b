package gateway

import (
	"bytes"
	"encoding/json"
)

// FlexString accepts a JSON string or a bare JSON literal and keeps the text
// exactly as sent. gross_amount arrives as "202000.00" or 202000.00 depending
// on the channel, and the signature is computed over the literal text.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Notification is the HTTP notification body posted by the gateway.
type Notification struct {
	OrderID           FlexString `json:"order_id"`
	StatusCode        FlexString `json:"status_code"`
	GrossAmount       FlexString `json:"gross_amount"`
	TransactionStatus FlexString `json:"transaction_status"`
	PaymentType       FlexString `json:"payment_type"`
	TransactionID     FlexString `json:"transaction_id"`
	SignatureKey      FlexString `json:"signature_key"`
}

func ParseNotification(body []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Verify checks signature_key against the server key.
func (n *Notification) Verify(serverKey string) bool {
	return VerifySignature(n.OrderID.String(), n.StatusCode.String(), n.GrossAmount.String(), serverKey, n.SignatureKey.String())
}
