package utils

import (
	"bytes"
	"encoding/base64"
	"io"

	"github.com/klauspost/compress/gzip"
)

// ToCompressedString gzips data and encodes it as base64 so it can live
// in a text database column.
func ToCompressedString(data []byte) string {
	var compressed bytes.Buffer
	w := gzip.NewWriter(&compressed)
	_, _ = w.Write(data)
	_ = w.Close()
	return base64.StdEncoding.EncodeToString(compressed.Bytes())
}

// FromCompressedString reverses ToCompressedString.
func FromCompressedString(data string) ([]byte, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	zipReader, err := gzip.NewReader(bytes.NewReader(decodedBytes))
	if err != nil {
		return nil, err
	}
	rawBytes, err := io.ReadAll(zipReader)
	if err != nil {
		return nil, err
	}
	return rawBytes, nil
}
