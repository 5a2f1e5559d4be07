package sanitizeimage

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRIFF assembles a minimal RIFF/WEBP container for testing; it
// does not need to be a decodable image, only a well-formed chunk
// sequence.
func buildRIFF(chunks map[string][]byte, order []string) []byte {
	var body bytes.Buffer
	for _, id := range order {
		data := chunks[id]
		body.WriteString(id)
		binary.Write(&body, binary.LittleEndian, uint32(len(data))) //nolint:errcheck
		body.Write(data)
		if len(data)%2 == 1 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()+4)) //nolint:errcheck
	out.WriteString("WEBP")
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestSanitizeWebP_DropsExifAndXMP(t *testing.T) {
	src := buildRIFF(map[string][]byte{
		"VP8 ": {0x01, 0x02, 0x03, 0x04},
		"EXIF": {0xAA, 0xBB},
		"XMP ": []byte("<xmp/>"),
	}, []string{"VP8 ", "EXIF", "XMP "})

	out, err := sanitizeWebP(src)
	require.NoError(t, err)

	assert.True(t, bytes.Contains(out, []byte("VP8 ")))
	assert.False(t, bytes.Contains(out, []byte("EXIF")))
	assert.False(t, bytes.Contains(out, []byte("XMP ")))
}

func TestSanitizeWebP_ClearsVP8XFlags(t *testing.T) {
	vp8x := make([]byte, 10)
	vp8x[0] = vp8xFlagExif | vp8xFlagXMP | 0x10 // alpha bit stays set

	src := buildRIFF(map[string][]byte{
		"VP8X": vp8x,
	}, []string{"VP8X"})

	out, err := sanitizeWebP(src)
	require.NoError(t, err)

	idx := bytes.Index(out, []byte("VP8X"))
	require.GreaterOrEqual(t, idx, 0)
	flags := out[idx+8]
	assert.Equal(t, byte(0x10), flags)
}

func TestSanitizeWebP_RejectsNonWebP(t *testing.T) {
	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4)) //nolint:errcheck
	out.WriteString("AVI ")

	_, err := sanitizeWebP(out.Bytes())
	assert.Error(t, err)
}
