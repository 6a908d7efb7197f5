// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strings"
	"unsafe"
)

// SliceUint32 reslices bytes into a uint32, that is used
// to sumbit vulkan shaders for processing
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// Bytes reslices any slice of plain values into its raw bytes,
// used to copy vertex and index data into mapped memory
func Bytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(zero)))
}

// StructBytes returns the raw bytes of a single value
func StructBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// SafeString null-terminates s for the Vulkan API,
// strings that already are stay as they are
func SafeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return fmt.Sprintf("%s\x00", s)
}

// SafeStrings null-terminates every string
func SafeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, SafeString(s))
	}
	return safe
}

// MissingName returns the first of the wanted names that is not
// among the available ones
func MissingName(available, wanted []string) (string, bool) {
	set := make(map[string]struct{}, len(available))
	for _, a := range available {
		set[strings.TrimRight(a, "\x00")] = struct{}{}
	}
	for _, w := range wanted {
		if _, ok := set[strings.TrimRight(w, "\x00")]; !ok {
			return strings.TrimRight(w, "\x00"), true
		}
	}
	return "", false
}
