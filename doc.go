// Package docval stores and converts documents: JSON-like values that
// travel as extended JSON text or as Python pickle data.
//
// The core lives in subpackages:
//
//   - value: the document model (null, bool, int, float, string, list, dict)
//   - text: the extended JSON parser and serializer
//   - pickle: the pickle stack machine reader and protocol 2 writer
//   - escape: string escaping shared by both codecs
//   - codec: named codecs (text, pickle, go-json, CBOR), optional LZ4/ZSTD framing
//   - blobstore: local, in-memory, caching, S3 and MinIO backends
//
// This package ties them together.
//
// # Files
//
//	v, err := docval.LoadFile("config.json")
//	err = docval.SaveFile("config.json", v, text.Format)
//
// # Stores
//
// A Store reads and writes documents in a blobstore with one codec:
//
//	docs := docval.New(blobstore.NewLocalStore("./data"),
//	    docval.WithCodec(codec.Pickle{}),
//	    docval.WithCache(64<<20),
//	)
//	defer docs.Close()
//
//	err := docs.Save(ctx, "users/42.pkl", v)
//	v, err := docs.Load(ctx, "users/42.pkl")
//	vs, err := docs.LoadAll(ctx, []string{"a.pkl", "b.pkl"})
//
// Batch operations run concurrently, bounded by the resource controller's
// worker slots. Errors carry the document name and operation; use
// errors.Is with ErrNotFound or value.ErrParse to classify them.
package docval
