package zipkit

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Record signatures. Every ZIP record begins with the two byte marker
// 0x4b50 ("PK") followed by a record type.
const (
	sigLocalFileHeader  uint32 = 0x04034b50
	sigCentralDirectory uint32 = 0x02014b50
	sigEndOfCentralDir  uint32 = 0x06054b50
)

// Fixed record sizes, excluding variable-length name/extra/comment
// fields.
const (
	localHeaderLen   = 30
	centralHeaderLen = 46
	endOfCentralLen  = 22
)

// maxCommentScan bounds the backward scan for the end-of-central-
// directory record: the record may be followed by a comment of at most
// 64 KiB.
const maxCommentScan = 1<<16 + endOfCentralLen

const (
	zipVersion    = 20     // version 2.0, deflate support
	creatorUnix   = 3 << 8 // "version made by" host system
	msdosDirAttr  = 0x10
	fileExternal  = uint32(0644) << 16
	dirExternal   = uint32(040755)<<16 | msdosDirAttr
)

// localHeader mirrors the on-disk local file header.
type localHeader struct {
	method   uint16
	modTime  uint16
	modDate  uint16
	crc32    uint32
	compSize uint32
	rawSize  uint32
	name     string
}

func (h *localHeader) encode() []byte {
	buf := make([]byte, localHeaderLen+len(h.name))
	binary.LittleEndian.PutUint32(buf[0:4], sigLocalFileHeader)
	binary.LittleEndian.PutUint16(buf[4:6], zipVersion)
	binary.LittleEndian.PutUint16(buf[6:8], 0) // general purpose flags
	binary.LittleEndian.PutUint16(buf[8:10], h.method)
	binary.LittleEndian.PutUint16(buf[10:12], h.modTime)
	binary.LittleEndian.PutUint16(buf[12:14], h.modDate)
	binary.LittleEndian.PutUint32(buf[14:18], h.crc32)
	binary.LittleEndian.PutUint32(buf[18:22], h.compSize)
	binary.LittleEndian.PutUint32(buf[22:26], h.rawSize)
	binary.LittleEndian.PutUint16(buf[26:28], uint16(len(h.name)))
	binary.LittleEndian.PutUint16(buf[28:30], 0) // extra field length
	copy(buf[localHeaderLen:], h.name)
	return buf
}

// localHeaderSizes are the variable-length field sizes needed to skip
// past a local header to the entry data. Sizes and checksum are taken
// from the central directory, not from here, since streamed writers
// may leave them zero in the local header.
type localHeaderSizes struct {
	nameLen  uint16
	extraLen uint16
}

func parseLocalHeader(buf []byte) (localHeaderSizes, error) {
	var s localHeaderSizes
	if len(buf) < localHeaderLen {
		return s, fmt.Errorf("%w: truncated local header", ErrMalformedArchive)
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != sigLocalFileHeader {
		return s, fmt.Errorf("%w: bad local header signature", ErrMalformedArchive)
	}
	s.nameLen = binary.LittleEndian.Uint16(buf[26:28])
	s.extraLen = binary.LittleEndian.Uint16(buf[28:30])
	return s, nil
}

// centralHeader mirrors the on-disk central directory file header.
type centralHeader struct {
	method       uint16
	modTime      uint16
	modDate      uint16
	crc32        uint32
	compSize     uint32
	rawSize      uint32
	externalAttr uint32
	localOffset  uint32
	name         string
}

func (h *centralHeader) encode() []byte {
	buf := make([]byte, centralHeaderLen+len(h.name))
	binary.LittleEndian.PutUint32(buf[0:4], sigCentralDirectory)
	binary.LittleEndian.PutUint16(buf[4:6], creatorUnix|zipVersion)
	binary.LittleEndian.PutUint16(buf[6:8], zipVersion)
	binary.LittleEndian.PutUint16(buf[8:10], 0) // general purpose flags
	binary.LittleEndian.PutUint16(buf[10:12], h.method)
	binary.LittleEndian.PutUint16(buf[12:14], h.modTime)
	binary.LittleEndian.PutUint16(buf[14:16], h.modDate)
	binary.LittleEndian.PutUint32(buf[16:20], h.crc32)
	binary.LittleEndian.PutUint32(buf[20:24], h.compSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.rawSize)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(h.name)))
	binary.LittleEndian.PutUint16(buf[30:32], 0) // extra field length
	binary.LittleEndian.PutUint16(buf[32:34], 0) // comment length
	binary.LittleEndian.PutUint16(buf[34:36], 0) // disk number start
	binary.LittleEndian.PutUint16(buf[36:38], 0) // internal attributes
	binary.LittleEndian.PutUint32(buf[38:42], h.externalAttr)
	binary.LittleEndian.PutUint32(buf[42:46], h.localOffset)
	copy(buf[centralHeaderLen:], h.name)
	return buf
}

// parseCentralHeader decodes one central directory header starting at
// buf[0] and returns it along with the total record length consumed.
func parseCentralHeader(buf []byte) (centralHeader, int, error) {
	var h centralHeader
	if len(buf) < centralHeaderLen {
		return h, 0, fmt.Errorf("%w: truncated central directory", ErrMalformedArchive)
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != sigCentralDirectory {
		return h, 0, fmt.Errorf("%w: bad central directory signature", ErrMalformedArchive)
	}
	h.method = binary.LittleEndian.Uint16(buf[10:12])
	h.modTime = binary.LittleEndian.Uint16(buf[12:14])
	h.modDate = binary.LittleEndian.Uint16(buf[14:16])
	h.crc32 = binary.LittleEndian.Uint32(buf[16:20])
	h.compSize = binary.LittleEndian.Uint32(buf[20:24])
	h.rawSize = binary.LittleEndian.Uint32(buf[24:28])
	nameLen := int(binary.LittleEndian.Uint16(buf[28:30]))
	extraLen := int(binary.LittleEndian.Uint16(buf[30:32]))
	commentLen := int(binary.LittleEndian.Uint16(buf[32:34]))
	h.externalAttr = binary.LittleEndian.Uint32(buf[38:42])
	h.localOffset = binary.LittleEndian.Uint32(buf[42:46])

	total := centralHeaderLen + nameLen + extraLen + commentLen
	if len(buf) < total {
		return h, 0, fmt.Errorf("%w: truncated central directory entry", ErrMalformedArchive)
	}
	h.name = string(buf[centralHeaderLen : centralHeaderLen+nameLen])
	return h, total, nil
}

// endOfCentralDir mirrors the on-disk end-of-central-directory record.
type endOfCentralDir struct {
	entryCount  uint16
	centralSize uint32
	centralOff  uint32
	comment     string
}

func (r *endOfCentralDir) encode() []byte {
	buf := make([]byte, endOfCentralLen+len(r.comment))
	binary.LittleEndian.PutUint32(buf[0:4], sigEndOfCentralDir)
	binary.LittleEndian.PutUint16(buf[4:6], 0) // this disk
	binary.LittleEndian.PutUint16(buf[6:8], 0) // central directory disk
	binary.LittleEndian.PutUint16(buf[8:10], r.entryCount)
	binary.LittleEndian.PutUint16(buf[10:12], r.entryCount)
	binary.LittleEndian.PutUint32(buf[12:16], r.centralSize)
	binary.LittleEndian.PutUint32(buf[16:20], r.centralOff)
	binary.LittleEndian.PutUint16(buf[20:22], uint16(len(r.comment)))
	copy(buf[endOfCentralLen:], r.comment)
	return buf
}

// findEndOfCentralDir locates the end-of-central-directory record by
// scanning backward from the end of tail for its signature. The record
// may be followed by a variable-length comment, so the scan tolerates
// trailing bytes up to maxCommentScan. tail is the last maxCommentScan
// bytes of the archive (or the whole archive if smaller) and base is
// the archive offset of tail[0].
func findEndOfCentralDir(tail []byte, base int64) (endOfCentralDir, int64, error) {
	var r endOfCentralDir
	if len(tail) < endOfCentralLen {
		return r, 0, fmt.Errorf("%w: too short for end of central directory", ErrMalformedArchive)
	}
	for i := len(tail) - endOfCentralLen; i >= 0; i-- {
		if binary.LittleEndian.Uint32(tail[i:i+4]) != sigEndOfCentralDir {
			continue
		}
		commentLen := int(binary.LittleEndian.Uint16(tail[i+20 : i+22]))
		if i+endOfCentralLen+commentLen != len(tail) {
			// A stray signature inside entry data; keep scanning.
			continue
		}
		r.entryCount = binary.LittleEndian.Uint16(tail[i+8 : i+10])
		r.centralSize = binary.LittleEndian.Uint32(tail[i+12 : i+16])
		r.centralOff = binary.LittleEndian.Uint32(tail[i+16 : i+20])
		r.comment = string(tail[i+endOfCentralLen:])
		return r, base + int64(i), nil
	}
	return r, 0, fmt.Errorf("%w: end of central directory not found", ErrMalformedArchive)
}

// timeToDos converts a time to MS-DOS date and time fields (two-second
// resolution, no dates before 1980).
func timeToDos(t time.Time) (dosDate, dosTime uint16) {
	if t.Year() < 1980 {
		return 0x21, 0 // 1980-01-01
	}
	dosDate = uint16((t.Year()-1980)<<9 | int(t.Month())<<5 | t.Day())
	dosTime = uint16(t.Hour()<<11 | t.Minute()<<5 | t.Second()/2)
	return dosDate, dosTime
}

// dosToTime converts MS-DOS date and time fields back to a time.
func dosToTime(dosDate, dosTime uint16) time.Time {
	return time.Date(
		int(dosDate>>9)+1980,
		time.Month(dosDate>>5&0xf),
		int(dosDate&0x1f),
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f)*2,
		0,
		time.UTC,
	)
}
