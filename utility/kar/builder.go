// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
)

// NewBuilder creates a new Builder. Do not fill the Index in
// the header, it will be overwritten anyway.
func NewBuilder(header Header) *Builder {
	header.Index = nil
	return &Builder{header: header}
}

type compressedFile struct {
	name string
	size int64
	data []byte
}

// Builder is the high level builder for the archive format.
// Archives are versioned and cannot be appended to, this Builder
// is the way to create an archive. Files are compressed as they are
// added, then bundled together and written out with WriteTo.
type Builder struct {
	header Header

	mutex sync.Mutex
	files []compressedFile
}

// Add compresses everything read from r into the builder under name.
// Will block until lz4 finishes compression. Is safe
// to use concurrently in different goroutines.
func (b *Builder) Add(name string, r io.Reader) error {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	written, err := io.Copy(writer, r)
	if err != nil {
		return errors.Wrapf(err, "compress %s", name)
	}
	if err := writer.Close(); err != nil {
		return errors.Wrapf(err, "compress %s", name)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, f := range b.files {
		if f.name == name {
			return errors.Newf("%s added twice", name)
		}
	}
	b.files = append(b.files, compressedFile{
		name: name,
		size: written,
		data: compressed.Bytes(),
	})
	return nil
}

// Len returns the number of files added
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.files)
}

// WriteTo bundles and writes all of the files added to the Builder
// into a kar archive that is ready to use. The builder is empty afterwards.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	var offset int64
	for _, f := range b.files {
		header.Index = append(header.Index, IndexEntry{
			Name:           f.name,
			Offset:         offset,
			Size:           f.size,
			CompressedSize: int64(len(f.data)),
		})
		offset += int64(len(f.data))
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, errors.Wrap(err, "encode header")
	}

	chunks := [][]byte{Magic[:], int64ToBinary(int64(len(rawHeader))), rawHeader}
	for _, f := range b.files {
		chunks = append(chunks, f.data)
	}

	var total int64
	for _, chunk := range chunks {
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	b.files = b.files[:0]
	return total, nil
}
