package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"jetlumen/go-backend/internal/domains/ledger"
)

var errInvalidParams = errors.New("invalid params")

// decodeNoParams accepts absent, null or [] params.
func decodeNoParams(raw json.RawMessage) (struct{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return struct{}{}, nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(trimmed, &arr); err != nil || len(arr) != 0 {
		return struct{}{}, errInvalidParams
	}
	return struct{}{}, nil
}

// decodeStrings requires exactly n non-blank positional strings.
func decodeStrings(raw json.RawMessage, n int) ([]string, error) {
	var arr []string
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) != n {
		return nil, errInvalidParams
	}
	for _, v := range arr {
		if strings.TrimSpace(v) == "" {
			return nil, errInvalidParams
		}
	}
	return arr, nil
}

func decodeOneString(raw json.RawMessage) (string, error) {
	arr, err := decodeStrings(raw, 1)
	if err != nil {
		return "", err
	}
	return arr[0], nil
}

func decodeTwoStrings(raw json.RawMessage) ([2]string, error) {
	arr, err := decodeStrings(raw, 2)
	if err != nil {
		return [2]string{}, err
	}
	return [2]string{arr[0], arr[1]}, nil
}

// decodeActionParams accepts [ {request} ] or a bare {request} object. Mode
// values are checked by the workflow, not here.
func decodeActionParams(raw json.RawMessage) (ledger.Request, error) {
	var arr []ledger.Request
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) != 1 || strings.TrimSpace(string(arr[0].Mode)) == "" {
			return ledger.Request{}, errInvalidParams
		}
		return arr[0], nil
	}
	var direct ledger.Request
	if err := json.Unmarshal(raw, &direct); err != nil || strings.TrimSpace(string(direct.Mode)) == "" {
		return ledger.Request{}, errInvalidParams
	}
	return direct, nil
}
