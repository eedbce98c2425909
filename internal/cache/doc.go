// Package cache holds recently read document blobs in memory.
//
// LRUBlobCache evicts least recently used blobs once its byte capacity is
// reached and, when given a resource.Controller, charges every cached byte
// against the shared memory limit.
package cache
