package zipkit

import (
	"fmt"
	"math"
	"strings"

	"github.com/gobeaver/zipkit/store"
)

// archive is the internal representation shared by the Zip and Unzip
// facades: one byte store plus the entry catalog. The two public types
// expose disjoint subsets of its operations, so a finalized writer's
// bytes can be reopened for reading without re-serializing.
type archive struct {
	st        store.Store
	entries   []*Entry
	index     map[string]int // kind-qualified normalized name -> entries slice position
	finalized bool
	comment   string
}

func newArchive(st store.Store) *archive {
	return &archive{
		st:    st,
		index: make(map[string]int),
	}
}

// add validates, compresses and appends one entry: local header plus
// payload. Re-adding an existing kind-qualified name overwrites the
// catalog record in place; the stale bytes remain in the store as
// unreachable padding, since finalize only references final offsets.
func (a *archive) add(name string, kind Kind, data []byte, opts Options) error {
	if a.finalized {
		return ErrAlreadyFinalized
	}

	var (
		norm string
		err  error
	)
	if kind == KindDir {
		norm, err = normalizeDirName(name)
	} else {
		norm, err = normalizeFileName(name)
	}
	if err != nil {
		return err
	}

	method := opts.Method
	if kind == KindDir {
		// Directory entries carry no data; always stored.
		method = Store
		data = nil
	}

	compressed, err := compressData(data, method, opts.Level)
	if err != nil {
		return err
	}
	if len(data) > math.MaxUint32 || len(compressed) > math.MaxUint32 {
		return fmt.Errorf("%w: entry exceeds 4 GiB, ZIP64 not supported", ErrNotSupported)
	}
	if a.st.Size()+int64(localHeaderLen+len(norm)+len(compressed)) > math.MaxUint32 {
		return fmt.Errorf("%w: archive exceeds 4 GiB, ZIP64 not supported", ErrNotSupported)
	}

	e := &Entry{
		Name:             norm,
		Kind:             kind,
		Method:           method,
		UncompressedSize: uint32(len(data)),
		CompressedSize:   uint32(len(compressed)),
		CRC32:            entryChecksum(data),
		Modified:         opts.ModTime,
	}

	dosDate, dosTime := timeToDos(e.Modified)
	hdr := localHeader{
		method:   uint16(method),
		modTime:  dosTime,
		modDate:  dosDate,
		crc32:    e.CRC32,
		compSize: e.CompressedSize,
		rawSize:  e.UncompressedSize,
		name:     norm,
	}

	off, err := a.st.Append(hdr.encode())
	if err != nil {
		return err
	}
	if len(compressed) > 0 {
		if _, err := a.st.Append(compressed); err != nil {
			return err
		}
	}
	e.Offset = off

	if i, exists := a.index[e.key()]; exists {
		a.entries[i] = e
	} else {
		a.index[e.key()] = len(a.entries)
		a.entries = append(a.entries, e)
	}
	return nil
}

// finalize appends one central directory record per current catalog
// entry, in catalog order, followed by the end-of-central-directory
// record, then flushes the store. The archive is read-only afterwards.
func (a *archive) finalize() error {
	if a.finalized {
		return ErrAlreadyFinalized
	}
	if len(a.entries) > math.MaxUint16 {
		return fmt.Errorf("%w: more than %d entries, ZIP64 not supported",
			ErrNotSupported, math.MaxUint16)
	}

	centralOff := a.st.Size()
	var centralSize int64
	for _, e := range a.entries {
		external := fileExternal
		if e.Kind == KindDir {
			external = dirExternal
		}
		dosDate, dosTime := timeToDos(e.Modified)
		hdr := centralHeader{
			method:       uint16(e.Method),
			modTime:      dosTime,
			modDate:      dosDate,
			crc32:        e.CRC32,
			compSize:     e.CompressedSize,
			rawSize:      e.UncompressedSize,
			externalAttr: external,
			localOffset:  uint32(e.Offset),
			name:         e.Name,
		}
		buf := hdr.encode()
		if _, err := a.st.Append(buf); err != nil {
			return err
		}
		centralSize += int64(len(buf))
	}

	eocd := endOfCentralDir{
		entryCount:  uint16(len(a.entries)),
		centralSize: uint32(centralSize),
		centralOff:  uint32(centralOff),
		comment:     a.comment,
	}
	if _, err := a.st.Append(eocd.encode()); err != nil {
		return err
	}
	if err := a.st.Flush(); err != nil {
		return err
	}
	a.finalized = true
	return nil
}

// openArchive populates the catalog from the store's central directory
// without decompressing any entry data. The store must contain a
// complete archive.
func openArchive(st store.Store) (*archive, error) {
	size := st.Size()
	tailLen := int64(maxCommentScan)
	if tailLen > size {
		tailLen = size
	}
	tail, err := st.ReadAt(size-tailLen, tailLen)
	if err != nil {
		return nil, err
	}
	eocd, eocdPos, err := findEndOfCentralDir(tail, size-tailLen)
	if err != nil {
		return nil, err
	}

	centralOff := int64(eocd.centralOff)
	centralSize := int64(eocd.centralSize)
	if centralOff+centralSize > eocdPos {
		return nil, fmt.Errorf("%w: central directory overlaps end record", ErrMalformedArchive)
	}
	central, err := st.ReadAt(centralOff, centralSize)
	if err != nil {
		return nil, fmt.Errorf("%w: central directory unreadable: %v", ErrMalformedArchive, err)
	}

	a := newArchive(st)
	a.finalized = true
	a.comment = eocd.comment
	pos := 0
	for i := 0; i < int(eocd.entryCount); i++ {
		hdr, n, err := parseCentralHeader(central[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		kind := KindFile
		if strings.HasSuffix(hdr.name, "/") || hdr.externalAttr&msdosDirAttr != 0 {
			kind = KindDir
		}
		e := &Entry{
			Name:             hdr.name,
			Kind:             kind,
			Method:           Method(hdr.method),
			UncompressedSize: hdr.rawSize,
			CompressedSize:   hdr.compSize,
			CRC32:            hdr.crc32,
			Offset:           int64(hdr.localOffset),
			Modified:         dosToTime(hdr.modDate, hdr.modTime),
		}
		if j, exists := a.index[e.key()]; exists {
			a.entries[j] = e
		} else {
			a.index[e.key()] = len(a.entries)
			a.entries = append(a.entries, e)
		}
	}
	if pos != len(central) {
		return nil, fmt.Errorf("%w: central directory entry count mismatch", ErrMalformedArchive)
	}
	return a, nil
}

// lookup resolves a user-supplied name to a catalog entry, trying the
// file form first and the directory form second.
func (a *archive) lookup(name string) (*Entry, bool) {
	norm, err := normalizeFileName(name)
	if err != nil {
		return nil, false
	}
	if i, ok := a.index[norm]; ok {
		return a.entries[i], true
	}
	if i, ok := a.index[norm+"/"]; ok {
		return a.entries[i], true
	}
	return nil, false
}

// extract reads an entry's payload lazily from the store, decompresses
// it, and verifies the checksum over the uncompressed bytes.
func (a *archive) extract(e *Entry) ([]byte, error) {
	if !a.finalized {
		return nil, ErrNotFinalized
	}
	if e.Kind == KindDir {
		return nil, ErrNotAFile
	}

	hdrBuf, err := a.st.ReadAt(e.Offset, localHeaderLen)
	if err != nil {
		return nil, err
	}
	sizes, err := parseLocalHeader(hdrBuf)
	if err != nil {
		return nil, err
	}

	dataOff := e.Offset + localHeaderLen + int64(sizes.nameLen) + int64(sizes.extraLen)
	compressed, err := a.st.ReadAt(dataOff, int64(e.CompressedSize))
	if err != nil {
		return nil, err
	}

	data, err := decompressData(compressed, e.Method, int(e.UncompressedSize))
	if err != nil {
		return nil, err
	}
	if entryChecksum(data) != e.CRC32 {
		return nil, fmt.Errorf("%w: entry %q", ErrChecksumMismatch, e.Name)
	}
	return data, nil
}

func (a *archive) close() error {
	return a.st.Close()
}
