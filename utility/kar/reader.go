// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
	"golang.org/x/exp/mmap"
)

// Open opens the kar archive from r. It will also check
// if the file is actually a kar archive, will return an error
// when file incorrect.
func Open(r io.ReaderAt) (*Archive, error) {
	magic := make([]byte, MagicLength)
	if _, err := r.ReadAt(magic, 0); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read magic"), ErrFileFormat)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, ErrFileFormat
	}

	headerSizeBytes := make([]byte, HeaderSizeNumberLength)
	if _, err := r.ReadAt(headerSizeBytes, MagicLength); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read header size"), ErrFileFormat)
	}
	headerSize, err := binaryToint64(headerSizeBytes)
	if err != nil {
		return nil, err
	}
	if headerSize <= 0 {
		return nil, ErrFileFormat
	}

	headerBytes := make([]byte, headerSize)
	if _, err := r.ReadAt(headerBytes, MagicLength+HeaderSizeNumberLength); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read header"), ErrFileFormat)
	}

	ar := &Archive{
		reader:    r,
		dataStart: MagicLength + HeaderSizeNumberLength + headerSize,
	}
	if err := gobDecode(&ar.header, headerBytes); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode header"), ErrFileFormat)
	}
	return ar, nil
}

// OpenFile memory maps the archive at path
func OpenFile(path string) (*Archive, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	ar, err := Open(r)
	if err != nil {
		r.Close()
		return nil, errors.Wrapf(err, "%s", path)
	}
	ar.closer = r
	return ar, nil
}

// Archive provides concurrent io for a kar file, and can provide
// an io.Reader for each file separately to perform actions on.
type Archive struct {
	reader    io.ReaderAt
	closer    io.Closer
	header    Header
	dataStart int64
}

// Header returns the archive header
func (a *Archive) Header() Header {
	return a.header
}

// Open returns a Reader for a file in the Archive
func (a *Archive) Open(name string) (*Reader, error) {
	entry, ok := a.header.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	section := io.NewSectionReader(a.reader, a.dataStart+entry.Offset, entry.CompressedSize)
	return &Reader{
		Reader: lz4.NewReader(section),
		entry:  entry,
	}, nil
}

// ReadAll returns the entire contents of a file with a given name
func (a *Archive) ReadAll(name string) ([]byte, error) {
	r, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, r.entry.Size)
	buf := bytes.NewBuffer(data)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, errors.Wrapf(err, "decompress %s", name)
	}
	if int64(buf.Len()) != r.entry.Size {
		return nil, errors.Mark(errors.Newf("%s: %d bytes, index says %d", name, buf.Len(), r.entry.Size), ErrFileFormat)
	}
	return buf.Bytes(), nil
}

// Find returns the contents of a file, so an Archive can
// stand in for a packd box
func (a *Archive) Find(name string) ([]byte, error) {
	return a.ReadAll(name)
}

// FindString returns the contents of a file as a string
func (a *Archive) FindString(name string) (string, error) {
	data, err := a.ReadAll(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close releases the memory mapping when the archive was opened with OpenFile
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Reader is a reader for a single file in an Archive.
// Reads return decompressed data.
type Reader struct {
	io.Reader

	entry IndexEntry
}

// Size is the decompressed size of the file
func (r *Reader) Size() int64 {
	return r.entry.Size
}
