package stega

import (
	"bytes"
	"errors"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/stega/lsb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "stega")
	require.Nil(t, err)
	return dir
}

func writeFile(t *testing.T, file string, b []byte) string {
	require.Nil(t, ioutil.WriteFile(file, b, 0644))
	return file
}

func newCarrier(units int) []byte {
	b := make([]byte, lsb.HeaderSkip+units*8)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func newTestStega(journal *Journal) (*Stega, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return New(journal, log.New(buf, "", 0)), buf
}

func TestHideShow(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	payload := writeFile(t, filepath.Join(dir, "secret.txt"), []byte("meet me at noon"))
	carrier := writeFile(t, filepath.Join(dir, "in.bmp"), newCarrier(64))
	output := filepath.Join(dir, "out.bmp")

	s, _ := newTestStega(nil)
	require.Nil(t, s.Hide(payload, carrier, output))

	b, err := ioutil.ReadFile(output)
	require.Nil(t, err)
	assert.Len(t, b, lsb.HeaderSkip+64*8)

	w := new(bytes.Buffer)
	require.Nil(t, s.Show(output, w))
	assert.Equal(t, "meet me at noon", w.String())
}

func TestHideOverwritesOutput(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	payload := writeFile(t, filepath.Join(dir, "secret.txt"), []byte("hi"))
	carrier := writeFile(t, filepath.Join(dir, "in.bmp"), newCarrier(4))
	output := writeFile(t, filepath.Join(dir, "out.bmp"), bytes.Repeat([]byte{0xff}, 1024))

	s, _ := newTestStega(nil)
	require.Nil(t, s.Hide(payload, carrier, output))

	b, err := ioutil.ReadFile(output)
	require.Nil(t, err)
	assert.Len(t, b, lsb.HeaderSkip+4*8)
}

func TestHideTooSmall(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	payload := writeFile(t, filepath.Join(dir, "secret.txt"), []byte("abcd"))
	carrier := writeFile(t, filepath.Join(dir, "in.bmp"), newCarrier(4))
	output := filepath.Join(dir, "out.bmp")

	s, _ := newTestStega(nil)
	err := s.Hide(payload, carrier, output)
	assert.True(t, errors.Is(err, lsb.ErrInsufficientCapacity))

	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestHideMissingFile(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	payload := filepath.Join(dir, "missing.txt")
	carrier := writeFile(t, filepath.Join(dir, "in.bmp"), newCarrier(4))

	s, _ := newTestStega(nil)
	err := s.Hide(payload, carrier, filepath.Join(dir, "out.bmp"))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), payload)

	var pe *os.PathError
	assert.True(t, errors.As(err, &pe))

	err = s.Hide(carrier, filepath.Join(dir, "missing.bmp"), filepath.Join(dir, "out.bmp"))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "missing.bmp")
}

func TestHideUnwritableOutput(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	payload := writeFile(t, filepath.Join(dir, "secret.txt"), []byte("hi"))
	carrier := writeFile(t, filepath.Join(dir, "in.bmp"), newCarrier(4))
	output := filepath.Join(dir, "nonexistent", "out.bmp")

	s, _ := newTestStega(nil)
	err := s.Hide(payload, carrier, output)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "error writing "+output)
}

func TestShowMissingTerminator(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	// Every LSB is zero so each block decodes to NUL
	carrier := writeFile(t, filepath.Join(dir, "in.bmp"), make([]byte, lsb.HeaderSkip+20))

	s, logs := newTestStega(nil)
	w := new(bytes.Buffer)
	require.Nil(t, s.Show(carrier, w))
	assert.Equal(t, []byte{0, 0}, w.Bytes())
	assert.Contains(t, logs.String(), "No terminator found")
}

func TestCapacity(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	s, _ := newTestStega(nil)

	tables := []struct {
		size, want int
	}{
		{0, 0},
		{lsb.HeaderSkip, 0},
		{lsb.HeaderSkip + 8, 0},
		{lsb.HeaderSkip + 16, 1},
		{lsb.HeaderSkip + 8*100 + 7, 99},
	}

	for _, table := range tables {
		carrier := writeFile(t, filepath.Join(dir, "in.bmp"), make([]byte, table.size))
		n, err := s.Capacity(carrier)
		assert.Nil(t, err)
		assert.Equal(t, table.want, n, "carrier size %d", table.size)
	}

	_, err := s.Capacity(filepath.Join(dir, "missing.bmp"))
	assert.NotNil(t, err)
}
