package codec

import (
	"errors"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/hupe1980/docval/value"
)

// cborMaxNesting bounds container depth on decode.
const cborMaxNesting = value.MaxDepth

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error

	// Core Deterministic Encoding: sorted keys, shortest integers and
	// floats, definite lengths.
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		IntDec:          cbor.IntDecConvertSignedOrFail,
		UTF8:            cbor.UTF8DecodeInvalid,
		MaxNestedLevels: cborMaxNesting,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR encodes documents as RFC 8949 CBOR.
//
// Strings are written as text strings without UTF-8 validation and read
// back byte for byte; byte strings from other producers decode as strings.
// Floats keep NaN and infinities. Like GoJSON, dict keys come back in
// sorted order.
type CBOR struct{}

// Marshal encodes v with Core Deterministic Encoding.
func (CBOR) Marshal(v value.Value) ([]byte, error) {
	x, err := toAny(v, true)
	if err != nil {
		return nil, err
	}
	return cborEnc.Marshal(x)
}

// Unmarshal decodes a single CBOR data item.
func (CBOR) Unmarshal(data []byte) (value.Value, error) {
	var x any
	if err := cborDec.Unmarshal(data, &x); err != nil {
		return value.Value{}, cborError(err)
	}
	v, err := FromAny(x)
	if err != nil {
		return value.Value{}, value.WrapParseError(0, err, "cbor: %v", err)
	}
	return v, nil
}

// Name returns "cbor".
func (CBOR) Name() string { return "cbor" }

func cborError(err error) error {
	var extra *cbor.ExtraneousDataError
	switch {
	case errors.As(err, &extra):
		return value.WrapParseError(0, value.ErrTrailingData, "cbor: %v", err)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return value.WrapParseError(0, value.ErrUnexpectedEOF, "cbor: %v", err)
	}
	return value.WrapParseError(0, err, "cbor: %v", err)
}

// DiagnoseCBOR returns the RFC 8949 diagnostic notation of data.
func DiagnoseCBOR(data []byte) (string, error) {
	s, err := cbor.Diagnose(data)
	if err != nil {
		return "", cborError(err)
	}
	return s, nil
}
