package protocol

import (
	"encoding/json"

	apperrors "unreal-mcp-go/internal/errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is a decoded editor reply. Result stays backed by the raw bytes so
// callers can pull fields with gjson paths.
type Response struct {
	Status string
	Result gjson.Result
	Error  string
	Raw    []byte
}

// Decode parses a reply document. Plugin handlers that answer with the inner
// `{"success": bool, ...}` shape are normalised to a status.
func Decode(raw []byte) (*Response, error) {
	if !gjson.ValidBytes(raw) {
		return nil, apperrors.New(apperrors.KindProtocol, "decode", "", "invalid JSON response")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, apperrors.New(apperrors.KindProtocol, "decode", "", "response must be a JSON object")
	}

	resp := &Response{Raw: raw}
	status := root.Get("status")
	switch {
	case status.Exists():
		resp.Status = status.String()
		resp.Result = root.Get("result")
	case root.Get("success").IsBool():
		if root.Get("success").Bool() {
			resp.Status = StatusSuccess
			resp.Result = root
		} else {
			resp.Status = StatusError
		}
	}
	resp.Error = firstString(root, "error", "message", "result.error")
	return resp, nil
}

// OK reports whether the editor accepted the command.
func (r *Response) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// Get returns a value inside result.
func (r *Response) Get(path string) gjson.Result {
	if r == nil || !r.Result.Exists() {
		return gjson.Result{}
	}
	return r.Result.Get(path)
}

// String returns a string value inside result.
func (r *Response) String(path string) string {
	return r.Get(path).String()
}

// ResultJSON returns the raw result object, or `{}` when absent.
func (r *Response) ResultJSON() json.RawMessage {
	if r == nil || !r.Result.Exists() || r.Result.Raw == "" {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(r.Result.Raw)
}

// Message returns the error text, falling back to the status.
func (r *Response) Message() string {
	if r == nil {
		return ""
	}
	if r.Error != "" {
		return r.Error
	}
	if r.Status == "" {
		return "response missing status"
	}
	return "status " + r.Status
}

// EncodeSuccess renders a success reply carrying result.
func EncodeSuccess(result any) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "status", StatusSuccess)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = map[string]any{}
	}
	return sjson.SetBytes(out, "result", result)
}

// EncodeError renders an error reply.
func EncodeError(message string) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "status", StatusError)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(out, "error", message)
}

func firstString(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := root.Get(p); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
