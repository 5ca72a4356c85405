// Package protocol implements the Unreal editor command socket wire format:
// one JSON object per connection in each direction, with no length prefix
// or delimiter.
package protocol

import (
	"strings"

	apperrors "unreal-mcp-go/internal/errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Command is a single remote procedure call sent to the editor.
type Command struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// NewCommand is a convenience constructor.
func NewCommand(typ string, params map[string]any) Command {
	return Command{Type: typ, Params: params}
}

// Encode renders the command as `{"type":...,"params":{...}}`. The output is
// compact and never contains a newline.
func (c Command) Encode() ([]byte, error) {
	if strings.TrimSpace(c.Type) == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "encode", "", "command type is required")
	}
	out, err := sjson.SetBytes([]byte(`{}`), "type", c.Type)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "encode", c.Type, err)
	}
	params := c.Params
	if params == nil {
		params = map[string]any{}
	}
	out, err = sjson.SetBytes(out, "params", params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "encode", c.Type, err)
	}
	return out, nil
}

// DecodeCommand parses a command document received by a server.
func DecodeCommand(raw []byte) (Command, error) {
	if !gjson.ValidBytes(raw) {
		return Command{}, apperrors.New(apperrors.KindProtocol, "decode", "", "invalid JSON")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Command{}, apperrors.New(apperrors.KindProtocol, "decode", "", "command must be a JSON object")
	}
	typ := root.Get("type")
	if typ.Type != gjson.String || strings.TrimSpace(typ.String()) == "" {
		return Command{}, apperrors.New(apperrors.KindProtocol, "decode", "", "missing command type")
	}
	cmd := Command{Type: typ.String(), Params: map[string]any{}}
	params := root.Get("params")
	if !params.Exists() || params.Type == gjson.Null {
		return cmd, nil
	}
	if !params.IsObject() {
		return Command{}, apperrors.New(apperrors.KindProtocol, "decode", cmd.Type, "params must be a JSON object")
	}
	if m, ok := params.Value().(map[string]interface{}); ok {
		cmd.Params = m
	}
	return cmd, nil
}
