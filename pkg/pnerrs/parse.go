package pnerrs

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorInfo is the serialized form of an error inside a tool result.
type ErrorInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ParseError normalizes anything a handler produced (an error or a
// recovered panic value) into an ErrorInfo.
func ParseError(v any) ErrorInfo {
	switch e := v.(type) {
	case nil:
		return ErrorInfo{Name: "Unknown", Message: "unknown error"}
	case error:
		return parseErr(e)
	case string:
		return ErrorInfo{Name: "Unknown", Message: e}
	default:
		data, err := json.Marshal(e)
		if err != nil {
			return ErrorInfo{Name: "Unknown", Message: fmt.Sprint(e)}
		}

		return ErrorInfo{Name: "Unknown", Message: string(data)}
	}
}

func parseErr(err error) ErrorInfo {
	var up *UpstreamError
	if errors.As(err, &up) {
		if msg, ok := vendorMessage(up.Body()); ok {
			return ErrorInfo{Name: "PubNubError", Message: msg}
		}
	}

	if pnErr, ok := AsPNError(err); ok {
		return ErrorInfo{Name: pnErr.Name(), Message: pnErr.Message()}
	}

	return ErrorInfo{Name: "Error", Message: err.Error()}
}

// vendorMessage extracts status.errorData from a PubNub error body.
func vendorMessage(body any) (string, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return "", false
	}

	status, ok := obj["status"].(map[string]any)
	if !ok {
		return "", false
	}

	data, ok := status["errorData"]
	if !ok || data == nil {
		return "", false
	}

	if s, ok := data.(string); ok {
		return s, true
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprint(data), true
	}

	return string(raw), true
}
