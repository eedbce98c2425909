// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "documents/")
//
//	docs := docval.New(store, docval.WithCodec(codec.Pickle{}))
//
// # Features
//
//   - Range reads for streaming a document without buffering it twice
//   - Multipart uploads through the SDK upload manager for Create
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
