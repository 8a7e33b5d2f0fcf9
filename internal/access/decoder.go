package access

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// ErrNoCredentialData is reported when an uploaded scan contains no decodable
// credential payload. It is distinct from credential.ErrNotFound: the decoder
// found nothing to look up at all.
var ErrNoCredentialData = errors.New("no credential data found in upload")

// PayloadDecoder extracts the scanned payload string from an uploaded
// artifact. QR image decoding itself happens upstream (kiosk or gateway);
// the server only ever sees the decoder's output.
type PayloadDecoder interface {
	Decode(r io.Reader) (string, error)
}

// TextDecoder reads the upload as UTF-8 text and treats it as the payload.
// Used when the scanning device submits the decoded QR content directly.
type TextDecoder struct{}

func (TextDecoder) Decode(r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(r, 4096)); err != nil {
		return "", err
	}
	payload := strings.TrimSpace(buf.String())
	if payload == "" {
		return "", ErrNoCredentialData
	}
	return payload, nil
}
