package parser

import (
	"bufio"
	"io"
	"sync"
)

const (
	// readerBufferSize holds a few hundred cell records per fill
	readerBufferSize = 16 * 1024
)

// readerPool manages buffered readers to reduce allocations when many
// payloads are decoded, for example by a DocumentCache warming up.
var readerPool = sync.Pool{
	New: func() any {
		return bufio.NewReaderSize(nil, readerBufferSize)
	},
}

// recordPool manages cell record scratch buffers
var recordPool = sync.Pool{
	New: func() any {
		b := make([]byte, cellRecordSize)
		return &b
	},
}

// acquireReader gets a buffered reader wrapping r from the pool
func acquireReader(r io.Reader) *bufio.Reader {
	br, ok := readerPool.Get().(*bufio.Reader)
	if !ok {
		return bufio.NewReaderSize(r, readerBufferSize)
	}
	br.Reset(r)
	return br
}

// releaseReader returns a reader to the pool, dropping its source reference
func releaseReader(br *bufio.Reader) {
	if br == nil {
		return
	}
	br.Reset(nil)
	readerPool.Put(br)
}

// acquireRecord gets a cell record buffer from the pool
func acquireRecord() []byte {
	bp, ok := recordPool.Get().(*[]byte)
	if !ok || cap(*bp) < cellRecordSize {
		return make([]byte, cellRecordSize)
	}
	return (*bp)[:cellRecordSize]
}

// releaseRecord returns a record buffer to the pool
func releaseRecord(b []byte) {
	if cap(b) < cellRecordSize {
		return
	}
	b = b[:cellRecordSize]
	recordPool.Put(&b)
}
