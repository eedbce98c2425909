package codec

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"

	"github.com/hupe1980/docval/value"
)

// GoJSON is a standard JSON codec backed by github.com/goccy/go-json.
//
// It exists for interoperability with strict JSON producers and consumers.
// Unlike JSON it treats strings as UTF-8: invalid sequences are replaced on
// Marshal, non-finite floats are rejected and dict keys are written in sorted
// order. Numbers with a fraction or exponent decode as floats, all others as
// integers.
type GoJSON struct {
	// Comments strips // and /* */ comments and trailing commas before
	// decoding (JSONC).
	Comments bool
}

// Marshal encodes the document to JSON.
func (GoJSON) Marshal(v value.Value) ([]byte, error) {
	x, err := ToAny(v)
	if err != nil {
		return nil, err
	}
	return gojson.Marshal(x)
}

// Unmarshal decodes a single JSON document.
func (c GoJSON) Unmarshal(data []byte) (value.Value, error) {
	if c.Comments {
		data = jsonc.ToJSON(data)
	}
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var x any
	if err := dec.Decode(&x); err != nil {
		return value.Value{}, value.WrapParseError(0, err, "go-json: %v", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return value.Value{}, value.WrapParseError(0, value.ErrTrailingData, "go-json: unexpected data after document")
	}
	return FromAny(x)
}

// Name returns the unique name of the codec ("go-json" or "go-jsonc").
func (c GoJSON) Name() string {
	if c.Comments {
		return "go-jsonc"
	}
	return "go-json"
}

func fromNumber(s string) (value.Value, error) {
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return value.Value{}, value.NewParseError(0, "go-json: invalid number %q", s)
		}
		return value.Float(f), nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return value.Value{}, value.WrapParseError(0, value.ErrOverflow, "go-json: integer %s out of range", s)
	}
	return value.Int(i), nil
}
