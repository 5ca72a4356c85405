package protocol

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	apperrors "unreal-mcp-go/internal/errors"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCommandEncode(t *testing.T) {
	cmd := NewCommand("add_blueprint_function_node", map[string]any{
		"blueprint_name": "BP",
		"params":         map[string]any{"Force": []float64{0, 0, 1000}},
		"node_position":  []int{400, 0},
	})
	raw, err := cmd.Encode()
	require.NoError(t, err)
	require.NotContains(t, string(raw), "\n")
	require.True(t, strings.HasPrefix(string(raw), `{"type":"add_blueprint_function_node"`))
	require.Equal(t, "BP", gjson.GetBytes(raw, "params.blueprint_name").String())
	require.Equal(t, float64(1000), gjson.GetBytes(raw, "params.params.Force.2").Float())
}

func TestCommandEncodeNilParams(t *testing.T) {
	raw, err := Command{Type: "compile_blueprint"}.Encode()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"compile_blueprint","params":{}}`, string(raw))
}

func TestCommandEncodeRequiresType(t *testing.T) {
	_, err := Command{Type: "  "}.Encode()
	require.Error(t, err)
	require.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"type":"create_blueprint","params":{"name":"BP","parent_class":"Actor"}}`))
	require.NoError(t, err)
	require.Equal(t, "create_blueprint", cmd.Type)
	require.Equal(t, "Actor", cmd.Params["parent_class"])

	cmd, err = DecodeCommand([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	require.Empty(t, cmd.Params)

	for _, bad := range []string{`{"type":`, `[1,2]`, `{"params":{}}`, `{"type":"x","params":[1]}`} {
		_, err := DecodeCommand([]byte(bad))
		require.Error(t, err, bad)
		require.Equal(t, apperrors.KindProtocol, apperrors.KindOf(err))
	}
}

func TestDecodeResponse(t *testing.T) {
	resp, err := Decode([]byte(`{"status":"success","result":{"node_id":"ABC"}}`))
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, "ABC", resp.String("node_id"))
	require.JSONEq(t, `{"node_id":"ABC"}`, string(resp.ResultJSON()))

	resp, err = Decode([]byte(`{"status":"error","error":"Blueprint not found: X"}`))
	require.NoError(t, err)
	require.False(t, resp.OK())
	require.Equal(t, "Blueprint not found: X", resp.Message())
	require.JSONEq(t, `{}`, string(resp.ResultJSON()))
}

func TestDecodeResponseInnerShape(t *testing.T) {
	resp, err := Decode([]byte(`{"success":false,"error":"Missing 'blueprint_name' parameter"}`))
	require.NoError(t, err)
	require.Equal(t, StatusError, resp.Status)
	require.Equal(t, "Missing 'blueprint_name' parameter", resp.Message())

	resp, err = Decode([]byte(`{"success":true,"node_id":"N1"}`))
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, "N1", resp.String("node_id"))

	resp, err = Decode([]byte(`{"result":{}}`))
	require.NoError(t, err)
	require.False(t, resp.OK())
	require.Equal(t, "response missing status", resp.Message())
}

func TestDecodeResponseRejectsNonObject(t *testing.T) {
	_, err := Decode([]byte(`"success"`))
	require.Error(t, err)
	_, err = Decode([]byte(`{"status":`))
	require.Error(t, err)
}

func TestEncodeReplies(t *testing.T) {
	raw, err := EncodeSuccess(map[string]any{"node_id": "X"})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"success","result":{"node_id":"X"}}`, string(raw))

	raw, err = EncodeError("Unknown command: nope")
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"error","error":"Unknown command: nope"}`, string(raw))
}

func TestReadDocumentAcrossChunks(t *testing.T) {
	doc := `{"status":"success","result":{"node_id":"0123456789ABCDEF0123456789ABCDEF"}}`
	raw, err := ReadDocument(iotest.OneByteReader(strings.NewReader(doc)), 4096, 0)
	require.NoError(t, err)
	require.Equal(t, doc, string(raw))

	raw, err = ReadDocument(strings.NewReader(doc), 7, 0)
	require.NoError(t, err)
	require.Equal(t, doc, string(raw))
}

// The reader stops as soon as the document parses and never waits for EOF.
func TestReadDocumentStopsAtValidDocument(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		_, _ = pw.Write([]byte(`{"status":"success"}`))
	}()
	raw, err := ReadDocument(pr, 4096, 0)
	require.NoError(t, err)
	require.Equal(t, `{"status":"success"}`, string(raw))
	_ = pw.Close()
}

func TestReadDocumentErrors(t *testing.T) {
	_, err := ReadDocument(bytes.NewReader(nil), 4096, 0)
	require.ErrorIs(t, err, ErrEmptyResponse)

	_, err = ReadDocument(strings.NewReader(`{"status":"succ`), 4096, 0)
	require.ErrorIs(t, err, ErrIncompleteResponse)
	require.True(t, IsFramingError(err))

	_, err = ReadDocument(strings.NewReader(`{"status":"success","result":{"pad":"`+strings.Repeat("x", 64)+`"}}`), 8, 32)
	require.ErrorIs(t, err, ErrResponseTooLarge)

	_, err = ReadDocument(iotest.ErrReader(io.ErrClosedPipe), 4096, 0)
	require.ErrorIs(t, err, io.ErrClosedPipe)
	require.False(t, IsFramingError(err))
}

func TestReadCommandAndResponse(t *testing.T) {
	cmd, err := ReadCommand(strings.NewReader(`{"type":"compile_blueprint","params":{"blueprint_name":"BP"}}`), 16, 0)
	require.NoError(t, err)
	require.Equal(t, "BP", cmd.Params["blueprint_name"])

	resp, err := ReadResponse(strings.NewReader(`{"status":"success","result":{"name":"BP"}}`), 16, 0)
	require.NoError(t, err)
	require.Equal(t, "BP", resp.String("name"))
}
