package docval

import (
	"context"
	"path/filepath"

	"github.com/hupe1980/docval/blobstore"
	"github.com/hupe1980/docval/text"
	"github.com/hupe1980/docval/value"
)

// LoadFile parses the text document at path with the extended grammar.
// The file is memory-mapped while it is parsed.
func LoadFile(path string) (value.Value, error) {
	dir, name := filepath.Split(path)
	store := blobstore.NewLocalStore(dirOrDot(dir))

	var v value.Value
	err := blobstore.View(context.Background(), store, name, func(data []byte) error {
		var err error
		v, err = text.Parse(data, false)
		return err
	})
	return v, translateError("load", path, err)
}

// SaveFile writes v as text to path, atomically replacing any existing
// file. flags select the output form, for example text.Format.
func SaveFile(path string, v value.Value, flags text.Flags) error {
	dir, name := filepath.Split(path)
	store := blobstore.NewLocalStore(dirOrDot(dir))
	err := store.Put(context.Background(), name, text.Serialize(v, flags))
	return translateError("save", path, err)
}

func dirOrDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
