package ember

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeclaredContentLengthParsesHeader(t *testing.T) {
	raw := "POST /x HTTP/1.1\r\nContent-Length: 11\r\n\r\n"
	assert.Equal(t, 11, declaredContentLength(raw))
}

func TestDeclaredContentLengthMissingHeaderIsZero(t *testing.T) {
	raw := "GET /x HTTP/1.1\r\n\r\n"
	assert.Equal(t, 0, declaredContentLength(raw))
}

func TestDeclaredContentLengthNonNumericIsZero(t *testing.T) {
	raw := "POST /x HTTP/1.1\r\nContent-Length: abc\r\n\r\n"
	assert.Equal(t, 0, declaredContentLength(raw))
}

func TestReadRequestReadsHeadersAndDeclaredBody(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	message := "POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"

	go func() {
		client.SetWriteDeadline(time.Now().Add(time.Second))
		client.Write([]byte(message))
		client.Close()
	}()

	got, err := readRequest(server)
	assert.NoError(t, err)
	assert.Equal(t, message, got)
}

func TestReadRequestReadsHeadOnlyRequestWithNoBody(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	message := "GET /x HTTP/1.1\r\nHost: localhost\r\n\r\n"

	go func() {
		client.SetWriteDeadline(time.Now().Add(time.Second))
		client.Write([]byte(message))
		client.Close()
	}()

	got, err := readRequest(server)
	assert.NoError(t, err)
	assert.Equal(t, message, got)
}
