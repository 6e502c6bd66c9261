package ember

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeURLEncodedBasic(t *testing.T) {
	v, err := decodeURLEncoded("a=1&b=two", DefaultURLEncodedConfig())
	assert.NoError(t, err)
	m, ok := v.(map[string]string)
	assert.True(t, ok)
	assert.Equal(t, "1", m["a"])
	assert.Equal(t, "two", m["b"])
}

func TestDecodeURLEncodedPercentAndPlus(t *testing.T) {
	v, err := decodeURLEncoded("name=John+Doe&note=a%20b", DefaultURLEncodedConfig())
	assert.NoError(t, err)
	m := v.(map[string]string)
	assert.Equal(t, "John Doe", m["name"])
	assert.Equal(t, "a b", m["note"])
}

func TestDecodeURLEncodedMalformedEscapeFallsBack(t *testing.T) {
	v, err := decodeURLEncoded("a=%zz", DefaultURLEncodedConfig())
	assert.NoError(t, err)
	m := v.(map[string]string)
	assert.Equal(t, "%zz", m["a"])
}

func TestDecodeURLEncodedFieldCountLimit(t *testing.T) {
	cfg := DefaultURLEncodedConfig()
	cfg.MaxFields = 1
	_, err := decodeURLEncoded("a=1&b=2", cfg)
	assert.Error(t, err)
}

func TestDecodeURLEncodedFieldValueLengthLimit(t *testing.T) {
	cfg := DefaultURLEncodedConfig()
	cfg.MaxFieldLength = 3
	_, err := decodeURLEncoded("a=toolong", cfg)
	assert.Error(t, err)
}

func TestFormDecode(t *testing.T) {
	assert.Equal(t, "a b", formDecode("a+b"))
	assert.Equal(t, "a b", formDecode("a%20b"))
	assert.Equal(t, "%zz", formDecode("%zz"))
}
