package renderer

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WritePPM encodes an RGBA frame buffer as a binary PPM image, dropping
// the alpha channel.
func WritePPM(w io.Writer, frameW, frameH uint32, frameBuffer []uint8) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", frameW, frameH); err != nil {
		return err
	}
	for offset := 0; offset < len(frameBuffer); offset += 4 {
		if _, err := bw.Write(frameBuffer[offset : offset+3]); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// SavePPM writes a frame buffer to a PPM file.
func SavePPM(path string, frameW, frameH uint32, frameBuffer []uint8) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WritePPM(f, frameW, frameH, frameBuffer)
}
