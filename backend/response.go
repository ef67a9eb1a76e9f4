package backend

import (
	"encoding/json"
	"mime"
	"strings"

	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
)

// Kind tags the payload carried by a Response
type Kind int

const (
	KindEmpty Kind = iota // No body
	KindJSON              // JSON holds the raw document
	KindText              // Text holds the body
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

// Response is a successful backend reply, classified once from its content type
type Response struct {
	Kind Kind
	JSON json.RawMessage
	Text string
}

// Decode unmarshals a JSON response into v. Text and empty responses are rejected.
func (r Response) Decode(v any) error {
	if r.Kind != KindJSON {
		return apperrors.Wrapf(apperrors.ErrUnsupportedPayload, "[Response Decode] expected json, got %s", r.Kind)
	}
	if err := json.Unmarshal(r.JSON, v); err != nil {
		return apperrors.Wrapf(apperrors.ErrUnsupportedPayload, "[Response Decode] %v", err)
	}
	return nil
}

func newResponse(contentType string, raw []byte) (Response, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Response{Kind: KindEmpty}, nil
	}
	if isJSON(contentType) {
		if !json.Valid(raw) {
			return Response{}, &RequestError{Message: "response body is not valid JSON", StatusCode: 0, Body: string(raw)}
		}
		return Response{Kind: KindJSON, JSON: json.RawMessage(raw)}, nil
	}
	return Response{Kind: KindText, Text: string(raw)}, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
