package qrsdetect

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZlib
	DataTypeBZip2
)

// Byte code signatures from https://stackoverflow.com/a/19127748/199475
var byteCodeSigs = []struct {
	DataType
	Sig []byte
}{
	{DataTypeGzip, []byte{0x1f, 0x8b, 0x08}},
	{DataTypeZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{DataTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{DataTypeBZip2, []byte{0x42, 0x5a, 0x68}},
	{DataTypeZlib, []byte{0x78, 0x9c}},
	{DataTypeZlib, []byte{0x78, 0x01}},
	{DataTypeZlib, []byte{0x78, 0xda}},
}

// DetectDataType peeks at the head of the stream and matches it against the
// known compression signatures. Nothing is consumed from br.
func DetectDataType(br *bufio.Reader) (DataType, error) {
	head, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return DataTypeInvalid, err
	}

	for _, v := range byteCodeSigs {
		if bytes.HasPrefix(head, v.Sig) {
			return v.DataType, nil
		}
	}

	return DataTypeNoCompression, nil
}

// MaybeDecompressReadCloser wraps rc in the decompressor its leading bytes
// call for. Closing the result closes rc. Zip archives yield their first
// entry.
func MaybeDecompressReadCloser(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)

	dt, err := DetectDataType(br)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var r io.Reader
	switch dt {
	case DataTypeGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &stackedCloser{Reader: gz, closers: []io.Closer{gz, rc}}, nil
	case DataTypeZlib:
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, rc}}, nil
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		if _, err := zr.Next(); err != nil {
			return nil, pfx.Err(err)
		}
		r = zr
	case DataTypeBZip2:
		r = bzip2.NewReader(br)
	case DataTypeXZ:
		if r, err = xz.NewReader(br, 0); err != nil {
			return nil, pfx.Err(err)
		}
	default:
		// Assume anything unrecognized is uncompressed.
		r = br
	}

	return &stackedCloser{Reader: r, closers: []io.Closer{rc}}, nil
}

// stackedCloser closes a decompressor and then the stream beneath it.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *stackedCloser) Close() error {
	var first error
	for _, v := range c.closers {
		if err := v.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
