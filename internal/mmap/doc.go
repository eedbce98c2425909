// Package mmap maps document files read-only into memory.
//
// The local blob store reads documents through a Mapping so the text and
// pickle parsers scan the page cache directly instead of a heap copy:
//
//	m, err := mmap.Open("doc.json")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	v, err := text.Parse(m.Bytes(), false)
//
// Unix uses mmap(2) and madvise(2). Windows uses CreateFileMapping and
// MapViewOfFile; Advise is a no-op there.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch the slice returned by Bytes after Close.
package mmap
