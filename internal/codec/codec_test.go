package codec_test

import (
	"testing"

	"litemq/internal/codec"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("hello"),
		[]byte{0x00, 0x01, 0xff, 0xfe},
		[]byte("line\nwith\nnewlines\nin\nthe\npayload"),
		make([]byte, 4096),
	}
	for _, payload := range cases {
		line := codec.Encode(payload)
		require.NotContains(t, line, "\n")
		decoded, err := codec.Decode(line)
		require.NoError(t, err)
		// Compared as strings: nil and an empty slice are the same byte
		// sequence and both encode to "".
		require.Equal(t, string(payload), string(decoded))
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := codec.Decode("not valid base64!!")
	require.ErrorIs(t, err, codec.ErrMalformedLine)
}

func TestDecodeRejectsEmbeddedNewline(t *testing.T) {
	_, err := codec.Decode("abc\ndef")
	require.ErrorIs(t, err, codec.ErrMalformedLine)
}
