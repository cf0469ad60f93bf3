package wordcipher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	Marker    = "===ENCRYPTED FILE==="
	Separator = "|||"
)

// Counts tallies per-line verification results of a decrypted file.
// Lines without a separator are passed through and not counted.
type Counts struct {
	Verified int `json:"verified"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

// Rate is the verified share of counted lines as a percentage.
func (c Counts) Rate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Verified) / float64(c.Total) * 100
}

func (c Counts) Summary() string {
	s := fmt.Sprintf("%d/%d lines verified (%.1f%%)", c.Verified, c.Total, c.Rate())
	if c.Failed > 0 {
		s += fmt.Sprintf("; %d lines failed verification, the passphrase may be incorrect or the file corrupted", c.Failed)
	}
	return s
}

// EncryptLines encrypts each non-empty line as one word and prefixes the
// result with Marker. Empty lines are kept as they are.
func EncryptLines(lines []string, passphrase string) ([]string, error) {
	if _, err := Derive(passphrase); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, Marker)
	for _, line := range lines {
		enc, err := encryptLine(line, passphrase)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// DecryptLines reverses EncryptLines. The first line must be Marker.
func DecryptLines(lines []string, passphrase string) ([]string, Counts, error) {
	var c Counts
	if _, err := Derive(passphrase); err != nil {
		return nil, c, err
	}
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Marker {
		return nil, c, &Error{Kind: ErrFormat, Op: "decrypt lines", Err: errors.New("not a valid encrypted file")}
	}
	out := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		dec, err := decryptLine(line, passphrase, &c)
		if err != nil {
			return nil, c, err
		}
		out = append(out, dec)
	}
	return out, c, nil
}

func encryptLine(line, passphrase string) (string, error) {
	if line == "" {
		return "", nil
	}
	rec, err := EncryptWord(line, passphrase)
	if err != nil {
		return "", err
	}
	return rec.Ciphertext + Separator + rec.Tag, nil
}

// decryptLine splits at the first separator only. A ciphertext that itself
// contained the separator would be mis-split; the format has no escaping.
func decryptLine(line, passphrase string, c *Counts) (string, error) {
	if line == "" {
		return "", nil
	}
	ct, tag, ok := strings.Cut(line, Separator)
	if !ok {
		return line, nil
	}
	plain, verified, err := DecryptWord(ct, passphrase, tag)
	if err != nil {
		return "", err
	}
	c.Total++
	if verified {
		c.Verified++
	} else {
		c.Failed++
	}
	return plain, nil
}

// EncryptStream reads r line by line and writes the encrypted file to w.
func EncryptStream(r io.Reader, w io.Writer, passphrase string) error {
	if _, err := Derive(passphrase); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := writeLine(bw, Marker); err != nil {
		return err
	}
	err := eachLine(r, func(line string) error {
		enc, err := encryptLine(line, passphrase)
		if err != nil {
			return err
		}
		return writeLine(bw, enc)
	})
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return ioErr("write", err)
	}
	return nil
}

// DecryptStream reads an encrypted file from r and writes the recovered
// lines to w.
func DecryptStream(r io.Reader, w io.Writer, passphrase string) (Counts, error) {
	var c Counts
	if _, err := Derive(passphrase); err != nil {
		return c, err
	}
	bw := bufio.NewWriter(w)
	first := true
	err := eachLine(r, func(line string) error {
		if first {
			first = false
			if strings.TrimSpace(line) != Marker {
				return &Error{Kind: ErrFormat, Op: "decrypt", Err: errors.New("not a valid encrypted file")}
			}
			return nil
		}
		dec, err := decryptLine(line, passphrase, &c)
		if err != nil {
			return err
		}
		return writeLine(bw, dec)
	})
	if err != nil {
		return c, err
	}
	if first {
		return c, &Error{Kind: ErrFormat, Op: "decrypt", Err: errors.New("empty input")}
	}
	if err := bw.Flush(); err != nil {
		return c, ioErr("write", err)
	}
	return c, nil
}

// EncryptFile encrypts the text file at inPath into outPath.
func EncryptFile(inPath, outPath, passphrase string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return ioErr("open input", err)
	}
	defer in.Close()

	return writeAtomic(outPath, func(w io.Writer) error {
		return EncryptStream(in, w, passphrase)
	})
}

// DecryptFile decrypts the encrypted file at inPath into outPath. outPath is
// left untouched when the input is not an encrypted file or any I/O fails.
func DecryptFile(inPath, outPath, passphrase string) (Counts, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Counts{}, ioErr("open input", err)
	}
	defer in.Close()

	var c Counts
	err = writeAtomic(outPath, func(w io.Writer) error {
		var err error
		c, err = DecryptStream(in, w, passphrase)
		return err
	})
	return c, err
}

// eachLine calls fn for every LF-terminated line of r without the line
// terminator. A trailing CR is dropped as well. Lines may be of any length.
func eachLine(r io.Reader, fn func(string) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return ioErr("read", err)
		}
		if line == "" && err != nil {
			return nil
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if ferr := fn(line); ferr != nil {
			return ferr
		}
		if err != nil {
			return nil
		}
	}
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return ioErr("write", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return ioErr("write", err)
	}
	return nil
}

// writeAtomic writes to a temp file next to path and renames it into place
// once fn succeeds.
func writeAtomic(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+".tmp-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return ioErr("create output", err)
	}
	defer os.Remove(tmp)

	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return ioErr("close output", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return ioErr("rename output", err)
	}
	return nil
}
