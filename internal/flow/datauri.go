package flow

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Media is an inline attachment sent with a generation request.
type Media struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes a base64 data URI such as
// "data:image/png;base64,iVBOR...".
func ParseDataURI(uri string) (Media, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Media{}, errors.New("data uri: missing data: scheme")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Media{}, errors.New("data uri: missing payload")
	}

	params := strings.Split(meta, ";")
	mimeType := strings.ToLower(strings.TrimSpace(params[0]))
	if mimeType == "" || !strings.Contains(mimeType, "/") {
		return Media{}, fmt.Errorf("data uri: invalid media type %q", params[0])
	}
	if params[len(params)-1] != "base64" {
		return Media{}, errors.New("data uri: payload is not base64")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Media{}, fmt.Errorf("data uri: decoding payload: %w", err)
	}
	if len(data) == 0 {
		return Media{}, errors.New("data uri: empty payload")
	}

	return Media{MIMEType: mimeType, Data: data}, nil
}

// DataURI encodes m as a base64 data URI.
func (m Media) DataURI() string {
	return "data:" + m.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}
