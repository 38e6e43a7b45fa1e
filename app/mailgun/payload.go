package mailgun

import (
	"fmt"
	"net/http"
)

// maxPayloadBytes caps the form body; newsletter HTML stays well under
// this.
const maxPayloadBytes = 10 << 20

// Payload is the form-encoded body of a Mailgun route webhook.
type Payload struct {
	From      string
	Subject   string
	BodyHTML  string
	Signature Signature
}

// PayloadFromRequest decodes and validates the webhook form. Mailgun
// posts either urlencoded or multipart bodies; both carry the same
// field names. A missing mandatory field is an error and nothing else
// of the request is inspected.
func PayloadFromRequest(r *http.Request) (Payload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxPayloadBytes)

	if err := r.ParseMultipartForm(maxPayloadBytes); err != nil {
		if err != http.ErrNotMultipart {
			return Payload{}, fmt.Errorf("failed to parse form: %w", err)
		}
		if err := r.ParseForm(); err != nil {
			return Payload{}, fmt.Errorf("failed to parse form: %w", err)
		}
	}

	p := Payload{
		From:     r.PostFormValue("from"),
		Subject:  r.PostFormValue("subject"),
		BodyHTML: r.PostFormValue("body-html"),
		Signature: Signature{
			Timestamp: r.PostFormValue("timestamp"),
			Token:     r.PostFormValue("token"),
			Signature: r.PostFormValue("signature"),
		},
	}

	required := map[string]string{
		"body-html": p.BodyHTML,
		"timestamp": p.Signature.Timestamp,
		"token":     p.Signature.Token,
		"signature": p.Signature.Signature,
	}
	for field, value := range required {
		if value == "" {
			return Payload{}, fmt.Errorf("missing required field %q", field)
		}
	}

	return p, nil
}
