package codec

import (
	"github.com/hupe1980/docval/pickle"
	"github.com/hupe1980/docval/value"
)

// Pickle is the Python pickle codec. It writes protocol 2 and reads the
// data opcodes of protocols 0 to 5.
type Pickle struct{}

// Marshal encodes the document as a pickle.
func (Pickle) Marshal(v value.Value) ([]byte, error) { return pickle.Serialize(v) }

// Unmarshal decodes a pickle holding one document.
func (Pickle) Unmarshal(data []byte) (value.Value, error) { return pickle.Parse(data) }

// Name returns the unique name of the codec ("pickle").
func (Pickle) Name() string { return "pickle" }
