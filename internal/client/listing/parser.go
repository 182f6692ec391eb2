package listing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/dmitrijs2005/drivesync/internal/logging"
)

// ReadSize is how many bytes the parser pulls from the stream at a time.
const ReadSize = 1024

var (
	filesStart   = []byte(`"data":{"uploads":[`)
	foldersStart = []byte(`],"folders":[`)
	payloadEnd   = []byte(`]}}`)
)

type parserState int

const (
	seekingRecords parserState = iota
	parsingRecords
)

// Parser extracts listing records from a directory-content response without
// reading it whole.
//
// Records are flat JSON objects, so a record ends at the first closing
// brace. Files come before folders: candidates are tried as files until the
// first one decodes as a folder, and as folders only after that. Until then
// a folder record that also satisfies the file schema is read as a file.
type Parser struct {
	r   io.Reader
	log logging.Logger

	buf        []byte
	state      parserState
	folderMode bool
	eof        bool
	chunk      []byte
}

func NewParser(r io.Reader, log logging.Logger) *Parser {
	if log == nil {
		log = logging.Nop()
	}
	return &Parser{r: r, log: log, chunk: make([]byte, ReadSize)}
}

// Next returns the next record, or io.EOF once the stream is exhausted.
// Undecodable candidates are logged and skipped.
func (p *Parser) Next(ctx context.Context) (Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Record{}, err
		}

		if p.state == seekingRecords {
			if i := bytes.Index(p.buf, filesStart); i >= 0 {
				p.buf = p.buf[i+len(filesStart):]
				p.state = parsingRecords
			} else if keep := len(filesStart) - 1; len(p.buf) > keep {
				p.buf = append(p.buf[:0], p.buf[len(p.buf)-keep:]...)
			}
		}

		if p.state == parsingRecords {
			if rec, ok := p.extract(ctx); ok {
				return rec, nil
			}
		}

		if p.eof {
			return Record{}, io.EOF
		}
		if err := p.fill(); err != nil {
			return Record{}, err
		}
	}
}

func (p *Parser) fill() error {
	n, err := p.r.Read(p.chunk)
	p.buf = append(p.buf, p.chunk[:n]...)
	if errors.Is(err, io.EOF) {
		p.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read listing: %w", err)
	}
	return nil
}

// extract pops candidates off the buffer until one decodes.
func (p *Parser) extract(ctx context.Context) (Record, bool) {
	for {
		if i := bytes.Index(p.buf, foldersStart); i >= 0 {
			p.buf = append(p.buf[:i], p.buf[i+len(foldersStart):]...)
		}
		if i := bytes.Index(p.buf, payloadEnd); i >= 0 {
			p.buf = append(p.buf[:i], p.buf[i+len(payloadEnd):]...)
		}

		end := bytes.IndexByte(p.buf, '}')
		if end < 0 {
			return Record{}, false
		}

		candidate := bytes.TrimPrefix(bytes.Clone(p.buf[:end+1]), []byte{','})
		p.buf = p.buf[end+1:]

		// closing brackets split across reads
		if !bytes.HasPrefix(candidate, []byte{'{'}) {
			p.log.Debug(ctx, "discarding listing fragment", "fragment", string(candidate))
			continue
		}

		rec, err := p.decode(candidate)
		if err == nil {
			return rec, true
		}
		p.log.Warn(ctx, "skipping listing record", "err", err, "len", len(candidate))
	}
}

func (p *Parser) decode(candidate []byte) (Record, error) {
	if !p.folderMode {
		if f, err := decodeFile(candidate); err == nil {
			return Record{File: f}, nil
		}
	}

	d, err := decodeFolder(candidate)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", common.ErrDecodeFailed, err)
	}
	p.folderMode = true
	return Record{Folder: d}, nil
}
