// Package base contains the primitives of text-based signaling headers that carry key management data.
package base

import (
	"bufio"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const (
	headerMaxEntryCount  = 255
	headerMaxKeyLength   = 512
	headerMaxValueLength = 4096
	headerMaxLineLength  = headerMaxKeyLength + 2 + headerMaxValueLength
)

func headerKeyNormalize(in string) string {
	switch strings.ToLower(in) {
	case "keymgmt":
		return "KeyMgmt"

	case "cseq":
		return "CSeq"
	}
	return http.CanonicalHeaderKey(in)
}

// HeaderValue is an header value.
type HeaderValue []string

// Header is a block of headers, like the one of a RTSP request or response.
type Header map[string]HeaderValue

// Get returns the value of the given key.
// Keys are compared after being normalized.
func (h Header) Get(key string) HeaderValue {
	return h[headerKeyNormalize(key)]
}

// Set sets the value of the given key.
func (h Header) Set(key string, v HeaderValue) {
	h[headerKeyNormalize(key)] = v
}

// readLine reads a line terminated by CRLF, without buffering more than maxLen bytes.
func readLine(rb *bufio.Reader, maxLen int) (string, error) {
	var line []byte

	for {
		byt, err := rb.ReadByte()
		if err != nil {
			return "", err
		}

		if byt == '\r' {
			byt, err = rb.ReadByte()
			if err != nil {
				return "", err
			}

			if byt != '\n' {
				return "", fmt.Errorf("expected '\n', got '%c'", byt)
			}

			return string(line), nil
		}

		if len(line) >= maxLen {
			return "", fmt.Errorf("line length exceeds %d", maxLen)
		}

		line = append(line, byt)
	}
}

// Read decodes a header block, that is terminated by an empty line.
func (h *Header) Read(rb *bufio.Reader) error {
	*h = make(Header)

	for {
		line, err := readLine(rb, headerMaxLineLength)
		if err != nil {
			return err
		}

		if line == "" {
			return nil
		}

		if len(*h) >= headerMaxEntryCount {
			return fmt.Errorf("headers count exceeds %d", headerMaxEntryCount)
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("missing ':' in header line")
		}

		if len(key) > headerMaxKeyLength {
			return fmt.Errorf("key length exceeds %d", headerMaxKeyLength)
		}

		// https://tools.ietf.org/html/rfc2616
		// The field value MAY be preceded by any amount of spaces
		val = strings.TrimLeft(val, " ")

		if len(val) > headerMaxValueLength {
			return fmt.Errorf("value length exceeds %d", headerMaxValueLength)
		}

		key = headerKeyNormalize(key)
		(*h)[key] = append((*h)[key], val)
	}
}

// Write encodes a header block.
func (h Header) Write(wb *bufio.Writer) error {
	// sort headers by key
	// in order to obtain deterministic results
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, val := range h[key] {
			_, err := wb.WriteString(key + ": " + val + "\r\n")
			if err != nil {
				return err
			}
		}
	}

	_, err := wb.WriteString("\r\n")
	return err
}
