package ember

import "github.com/valyala/bytebufferpool"

// readBufferPool reuses the byte buffers serveConn accumulates one
// connection's raw request bytes into, the same pooled-buffer strategy
// the teacher framework applies to its own hot-path allocations (pool.go),
// adapted here from a pool of domain objects (Context/Request/Response,
// which this design treats as one-per-request and garbage-collected
// instead) to the one allocation that actually recurs on every
// connection: the read scratch buffer.
var readBufferPool bytebufferpool.Pool

// acquireReadBuffer returns a pooled, empty *bytebufferpool.ByteBuffer.
func acquireReadBuffer() *bytebufferpool.ByteBuffer {
	return readBufferPool.Get()
}

// releaseReadBuffer returns buf to the pool for reuse.
func releaseReadBuffer(buf *bytebufferpool.ByteBuffer) {
	readBufferPool.Put(buf)
}
