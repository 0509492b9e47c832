// Package multipart decodes multipart/form-data request bodies.
//
// The decoder is fed raw byte chunks of arbitrary size and scans an
// accumulation buffer for boundary markers, so a body split across network
// reads decodes identically to one delivered in a single chunk. It performs
// no I/O and no logging; callers own the input source and the decoded form.
package multipart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// File is one uploaded file from a form submission.
type File struct {
	FieldName   string
	Filename    string
	ContentType string
	Content     []byte
}

// Form is the fully decoded submission. Duplicate plain-field names are
// last-write-wins; duplicate file field names are all preserved in
// submission order.
type Form struct {
	Fields map[string]string
	Files  []File
}

// Limits bound what a single request may carry. A request exceeding a limit
// is rejected outright, never truncated. Zero values mean unlimited.
type Limits struct {
	MaxFileSize int64
	MaxFiles    int
}

var (
	ErrNoBoundary    = errors.New("multipart: no boundary parameter in content type")
	ErrTooManyFiles  = errors.New("multipart: too many files")
	ErrFileTooLarge  = errors.New("multipart: file size limit exceeded")
	ErrTruncatedPart = errors.New("multipart: unterminated part headers")
)

const defaultMediaType = "application/octet-stream"

// ExtractBoundary pulls the boundary token out of a Content-Type header
// value such as "multipart/form-data; boundary=----abc123".
func ExtractBoundary(contentType string) (string, error) {
	for _, param := range strings.Split(contentType, ";") {
		param = strings.TrimSpace(param)
		if !strings.HasPrefix(param, "boundary=") {
			continue
		}
		boundary := strings.TrimPrefix(param, "boundary=")
		boundary = strings.Trim(boundary, `"`)
		if boundary == "" {
			return "", ErrNoBoundary
		}
		return boundary, nil
	}
	return "", ErrNoBoundary
}

type state int

const (
	// stateScan covers both the preamble (no open part) and part bodies:
	// either way the decoder is looking for the next boundary marker.
	stateScan state = iota
	stateAfterBoundary
	stateHeaders
	stateDone
)

type part struct {
	name        string
	filename    string
	contentType string
	isFile      bool
	body        []byte
}

// Decoder incrementally decodes one multipart body. Feed chunks with Write,
// then call Close at end of input to obtain the form.
type Decoder struct {
	marker []byte // "--" + boundary
	limits Limits
	buf    []byte
	state  state
	part   *part // nil while scanning the preamble
	form   *Form
	err    error
}

func NewDecoder(boundary string, limits Limits) *Decoder {
	return &Decoder{
		marker: []byte("--" + boundary),
		limits: limits,
		form:   &Form{Fields: make(map[string]string)},
	}
}

// Decode reads r to end of input and decodes it against the given boundary.
func Decode(r io.Reader, boundary string, limits Limits) (*Form, error) {
	d := NewDecoder(boundary, limits)
	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if werr := d.Write(chunk[:n]); werr != nil {
				return nil, werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("multipart: read body: %w", err)
		}
	}
	return d.Close()
}

// Write appends one chunk of the body and consumes as much of the buffered
// data as can be resolved so far. It reports the first decode error
// encountered; later calls keep returning the same error.
func (d *Decoder) Write(chunk []byte) error {
	if d.err != nil {
		return d.err
	}
	if d.state == stateDone {
		return nil
	}
	d.buf = append(d.buf, chunk...)
	d.err = d.process()
	return d.err
}

// Close signals end of input and returns the decoded form. An open part at
// end of input keeps whatever content arrived; an unterminated headers
// block is a decode error.
func (d *Decoder) Close() (*Form, error) {
	if d.err != nil {
		return nil, d.err
	}
	switch d.state {
	case stateHeaders:
		d.err = ErrTruncatedPart
		return nil, d.err
	case stateScan:
		if d.part != nil {
			d.part.body = append(d.part.body, d.buf...)
			d.buf = nil
			if err := d.closePart(); err != nil {
				d.err = err
				return nil, err
			}
		}
	}
	d.state = stateDone
	return d.form, nil
}

func (d *Decoder) process() error {
	for {
		switch d.state {
		case stateScan:
			idx := bytes.Index(d.buf, d.marker)
			if idx < 0 {
				// Keep a tail long enough to hold a marker split across
				// chunks; everything before it is settled part content.
				keep := len(d.marker) + 3
				if len(d.buf) > keep {
					settled := d.buf[:len(d.buf)-keep]
					if d.part != nil {
						d.part.body = append(d.part.body, settled...)
						if err := d.checkFileSize(); err != nil {
							return err
						}
					}
					d.buf = append([]byte(nil), d.buf[len(d.buf)-keep:]...)
				}
				return nil
			}
			if d.part != nil {
				d.part.body = append(d.part.body, d.buf[:idx]...)
				if err := d.closePart(); err != nil {
					return err
				}
			}
			d.buf = d.buf[idx+len(d.marker):]
			d.state = stateAfterBoundary

		case stateAfterBoundary:
			// The two bytes after a marker decide between the terminal
			// "--" and the CRLF that opens the next part's headers.
			if len(d.buf) < 2 {
				return nil
			}
			if d.buf[0] == '-' && d.buf[1] == '-' {
				d.state = stateDone
				return nil
			}
			d.buf = d.buf[2:]
			d.state = stateHeaders

		case stateHeaders:
			idx := bytes.Index(d.buf, []byte("\r\n\r\n"))
			if idx < 0 {
				// Header block split across chunks; wait for more input.
				return nil
			}
			headers := parseHeaders(d.buf[:idx])
			d.buf = d.buf[idx+4:]
			d.openPart(headers)
			if err := d.checkFileCount(); err != nil {
				return err
			}
			d.state = stateScan

		case stateDone:
			return nil
		}
	}
}

func (d *Decoder) openPart(headers map[string]string) {
	disposition := headers["content-disposition"]
	p := &part{
		name:        dispositionParam(disposition, "name"),
		filename:    dispositionParam(disposition, "filename"),
		contentType: headers["content-type"],
	}
	p.isFile = strings.Contains(disposition, "filename=")
	d.part = p
}

func (d *Decoder) closePart() error {
	p := d.part
	d.part = nil

	// The CRLF preceding the boundary belongs to the framing, not the
	// content.
	p.body = bytes.TrimSuffix(p.body, []byte("\r\n"))
	body := p.body

	if err := d.checkFileSizeOf(p); err != nil {
		return err
	}

	if p.name == "" {
		return nil
	}
	if p.isFile {
		contentType := p.contentType
		if contentType == "" {
			contentType = defaultMediaType
		}
		d.form.Files = append(d.form.Files, File{
			FieldName:   p.name,
			Filename:    p.filename,
			ContentType: contentType,
			Content:     body,
		})
		return nil
	}
	d.form.Fields[p.name] = string(body)
	return nil
}

func (d *Decoder) checkFileCount() error {
	if d.limits.MaxFiles > 0 && d.part != nil && d.part.isFile && len(d.form.Files) >= d.limits.MaxFiles {
		return ErrTooManyFiles
	}
	return nil
}

// checkFileSize runs against a part still accumulating content, which may
// carry up to two bytes of framing CRLF that only get trimmed on close.
func (d *Decoder) checkFileSize() error {
	p := d.part
	if p == nil || !p.isFile {
		return nil
	}
	if d.limits.MaxFileSize > 0 && int64(len(p.body)) > d.limits.MaxFileSize+2 {
		return ErrFileTooLarge
	}
	return nil
}

func (d *Decoder) checkFileSizeOf(p *part) error {
	if p == nil || !p.isFile {
		return nil
	}
	if d.limits.MaxFileSize > 0 && int64(len(p.body)) > d.limits.MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// parseHeaders splits a part's header block into a lower-cased key map.
// Lines with no colon are ignored rather than treated as errors.
func parseHeaders(block []byte) map[string]string {
	headers := make(map[string]string)
	for _, line := range bytes.Split(block, []byte("\r\n")) {
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(string(line[:colon])))
		value := strings.TrimSpace(string(line[colon+1:]))
		headers[key] = value
	}
	return headers
}

// dispositionParam extracts a quoted parameter such as name="avatar" from a
// Content-Disposition header value. The match must start a parameter, so
// looking up "name" never lands inside "filename".
func dispositionParam(disposition, key string) string {
	needle := key + `="`
	offset := 0
	for {
		i := strings.Index(disposition[offset:], needle)
		if i < 0 {
			return ""
		}
		start := offset + i
		if start == 0 || disposition[start-1] == ' ' || disposition[start-1] == ';' {
			rest := disposition[start+len(needle):]
			end := strings.IndexByte(rest, '"')
			if end < 0 {
				return ""
			}
			return rest[:end]
		}
		offset = start + len(needle)
	}
}
