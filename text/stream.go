package text

import (
	"io"

	"github.com/hupe1980/docval/value"
)

// Encoder writes documents to an output stream, one per line.
type Encoder struct {
	w     io.Writer
	flags Flags
	buf   []byte
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer, flags Flags) *Encoder {
	return &Encoder{w: w, flags: flags}
}

// Encode writes the text rendering of v followed by a newline.
func (e *Encoder) Encode(v value.Value) error {
	e.buf = Append(e.buf[:0], v, e.flags)
	e.buf = append(e.buf, '\n')
	_, err := e.w.Write(e.buf)
	return err
}

// Decoder reads a sequence of documents from an input stream.
//
// The whole stream is read on the first call to Decode or More; documents
// are then parsed one after another, separated by whitespace or comments.
type Decoder struct {
	r      io.Reader
	strict bool
	data   []byte
	off    int
	loaded bool
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader, strict bool) *Decoder {
	return &Decoder{r: r, strict: strict}
}

func (d *Decoder) load() error {
	if d.loaded {
		return nil
	}
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	d.data = data
	d.loaded = true
	return nil
}

// More reports whether another document follows.
func (d *Decoder) More() bool {
	if err := d.load(); err != nil {
		return false
	}
	p := parser{data: d.data, strict: d.strict}
	i, err := p.skip(d.off)
	return err != nil || i < len(d.data)
}

// Decode parses the next document. It returns io.EOF when only whitespace
// and comments remain.
func (d *Decoder) Decode() (value.Value, error) {
	if err := d.load(); err != nil {
		return value.Value{}, err
	}
	p := parser{data: d.data, strict: d.strict}
	i, err := p.skip(d.off)
	if err != nil {
		return value.Value{}, err
	}
	if i >= len(d.data) {
		d.off = i
		return value.Value{}, io.EOF
	}
	v, end, err := p.parseValue(i)
	if err != nil {
		return value.Value{}, err
	}
	d.off = end
	return v, nil
}

// InputOffset returns the offset just past the last decoded document.
func (d *Decoder) InputOffset() int {
	return d.off
}
