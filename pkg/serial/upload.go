package serial

import (
	"io"
	"os"

	"ahmes-go/pkg/errors"
)

const uploadChunkSize = 4096

// Upload streams the script file at path to the instrument connection.
// The progress callback, if non-nil, is invoked after each chunk with the
// number of bytes sent so far and the total file size.
func Upload(w io.Writer, path string, progress func(sent, total int64)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrSerial, "failed to open script for upload").
			SetContext("path", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, errors.ErrSerial, "failed to stat script for upload").
			SetContext("path", path)
	}
	total := info.Size()

	buf := make([]byte, uploadChunkSize)
	var sent int64
	for {
		n, err := f.Read(buf)
		if n > 0 {
			// Serial writes may be partial under flow control.
			off := 0
			for off < n {
				nw, werr := w.Write(buf[off:n])
				if werr != nil {
					if werr == ErrTimeout {
						return errors.SerialTimeoutError(path)
					}
					return errors.Wrap(werr, errors.ErrSerial, "upload write failed").
						SetContext("path", path)
				}
				off += nw
			}
			sent += int64(n)
			if progress != nil {
				progress(sent, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrSerial, "upload read failed").
				SetContext("path", path)
		}
	}

	return nil
}
