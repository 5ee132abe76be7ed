package qrsdetect

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCounter struct {
	io.Reader
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestMaybeDecompressReadCloser(t *testing.T) {
	payload := []byte("sample,MLII\n0,995\n1,995\n")

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var zl bytes.Buffer
	zw := zlib.NewWriter(&zl)
	_, err = zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	for name, body := range map[string][]byte{
		"plain": payload,
		"gzip":  gz.Bytes(),
		"zlib":  zl.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			src := &closeCounter{Reader: bytes.NewReader(body)}

			rc, err := MaybeDecompressReadCloser(src)
			require.NoError(t, err)

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			require.NoError(t, rc.Close())
			assert.Equal(t, 1, src.closed)
		})
	}
}

func TestDetectDataType(t *testing.T) {
	cases := []struct {
		Head     []byte
		Expected DataType
	}{
		{[]byte{0x1f, 0x8b, 0x08, 0x00}, DataTypeGzip},
		{[]byte{0x50, 0x4b, 0x03, 0x04, 0x14}, DataTypeZip},
		{[]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00}, DataTypeXZ},
		{[]byte("BZh91AY"), DataTypeBZip2},
		{[]byte{0x78, 0x9c, 0x01}, DataTypeZlib},
		{[]byte("x,y\n"), DataTypeNoCompression},
		{[]byte("1"), DataTypeNoCompression},
		{nil, DataTypeNoCompression},
	}

	for _, c := range cases {
		br := bufio.NewReader(bytes.NewReader(c.Head))
		dt, err := DetectDataType(br)
		require.NoError(t, err)
		assert.Equal(t, c.Expected, dt, "%x", c.Head)

		// Detection must not consume anything.
		rest, err := io.ReadAll(br)
		require.NoError(t, err)
		assert.Equal(t, len(c.Head), len(rest))
	}
}

func TestOpenLocalGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "100_qrs_locs.txt.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	require.NoError(t, WritePeaks(gw, []int{77, 370, 662}))
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	rc, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer rc.Close()

	peaks, err := ReadPeaks(rc)
	require.NoError(t, err)
	assert.Equal(t, []int{77, 370, 662}, peaks)

	_, err = Open(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = OpenRaw(context.Background(), filepath.Join(t.TempDir(), "101.atr"), nil)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSplitGSPath(t *testing.T) {
	bucket, object, err := SplitGSPath("gs://mitdb/records/100.dat")
	require.NoError(t, err)
	assert.Equal(t, "mitdb", bucket)
	assert.Equal(t, "records/100.dat", object)

	for _, bad := range []string{"gs://mitdb", "gs://mitdb/", "gs:///100.dat"} {
		_, _, err := SplitGSPath(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "gs://mitdb/100.hea", JoinPath("gs://mitdb/", "100.hea"))
	assert.Equal(t, filepath.Join("data", "100.hea"), JoinPath("data", "100.hea"))
	assert.Equal(t, "100.hea", JoinPath("", "100.hea"))
}
