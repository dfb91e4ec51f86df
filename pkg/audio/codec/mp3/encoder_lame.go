//go:build lame

package mp3

/*
#cgo darwin CFLAGS: -I/opt/homebrew/include
#cgo darwin LDFLAGS: -L/opt/homebrew/lib -lmp3lame
#cgo linux pkg-config: mp3lame
#include <lame/lame.h>
#include <stdlib.h>
*/
import "C"
import (
	"errors"
	"io"
	"unsafe"

	"github.com/haivivi/songforge/pkg/audio/pcm"
)

const available = true

// frameSamples is the number of samples handed to LAME per call.
const frameSamples = 8192

func encode(w io.Writer, c pcm.Chunk, bitrate int) error {
	lame := C.lame_init()
	if lame == nil {
		return errors.New("mp3: failed to initialize LAME")
	}
	defer C.lame_close(lame)

	C.lame_set_in_samplerate(lame, C.int(c.Format.SampleRate()))
	C.lame_set_num_channels(lame, C.int(c.Format.Channels()))
	C.lame_set_mode(lame, C.MONO)
	C.lame_set_VBR(lame, C.vbr_off)
	C.lame_set_brate(lame, C.int(bitrate))
	// No ID3 tags so that identical input yields identical bytes.
	C.lame_set_write_id3tag_automatic(lame, 0)
	if C.lame_init_params(lame) < 0 {
		return errors.New("mp3: failed to set LAME parameters")
	}

	// LAME recommends 1.25*num_samples + 7200
	out := make([]byte, frameSamples*5/4+7200)
	for off := 0; off < len(c.Samples); off += frameSamples {
		block := c.Samples[off:min(off+frameSamples, len(c.Samples))]
		n := C.lame_encode_buffer(
			lame,
			(*C.short)(unsafe.Pointer(&block[0])),
			nil,
			C.int(len(block)),
			(*C.uchar)(unsafe.Pointer(&out[0])),
			C.int(len(out)),
		)
		if n < 0 {
			return errors.New("mp3: encode failed")
		}
		if _, err := w.Write(out[:n]); err != nil {
			return err
		}
	}

	n := C.lame_encode_flush(lame, (*C.uchar)(unsafe.Pointer(&out[0])), C.int(len(out)))
	if n > 0 {
		if _, err := w.Write(out[:n]); err != nil {
			return err
		}
	}
	return nil
}
