/*
Package stega is a library for hiding text inside uncompressed bitmap images
and recovering it again.
*/
package stega

import (
	"crypto/sha1"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"time"

	"github.com/bodgit/stega/lsb"
)

// DefaultOutput is the filename used by the command line tool when no output
// file is given
const DefaultOutput = "out.bmp"

type Stega struct {
	journal *Journal
	logger  *log.Logger
}

// New returns a Stega that logs to logger. journal may be nil in which case
// nothing is recorded.
func New(journal *Journal, logger *log.Logger) *Stega {
	return &Stega{
		journal: journal,
		logger:  logger,
	}
}

func readFile(file string) ([]byte, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", file, err)
	}
	return b, nil
}

func sha1Sum(b []byte) string {
	return fmt.Sprintf("%X", sha1.Sum(b))
}

// Hide reads the text in payloadFile, hides it in the bitmap carrierFile and
// writes the result to outputFile. Nothing is written if the carrier is too
// small. A failure to record the result in the journal is only logged as the
// output file has already been written by then.
func (s *Stega) Hide(payloadFile, carrierFile, outputFile string) error {
	payload, err := readFile(payloadFile)
	if err != nil {
		return err
	}

	carrier, err := readFile(carrierFile)
	if err != nil {
		return err
	}

	b, err := lsb.Encode(payload, carrier)
	if err != nil {
		return err
	}

	if err := ioutil.WriteFile(outputFile, b, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", outputFile, err)
	}
	s.logger.Printf("Hid %d bytes from \"%s\" in \"%s\"\n", len(payload), payloadFile, outputFile)

	if s.journal != nil {
		if err := s.journal.Record(outputFile, b, len(payload)); err != nil {
			s.logger.Printf("Unable to record \"%s\" in journal: %v\n", outputFile, err)
		}
	}

	return nil
}

// Show writes the text hidden in carrierFile to w.
func (s *Stega) Show(carrierFile string, w io.Writer) error {
	carrier, err := readFile(carrierFile)
	if err != nil {
		return err
	}

	if s.journal != nil {
		entry, err := s.journal.FindBySHA1(sha1Sum(carrier))
		if err != nil {
			return err
		}
		if entry != nil {
			s.logger.Printf("\"%s\" was written as \"%s\" at %s\n", carrierFile, entry.Path, entry.Created.Format(time.RFC3339))
		}
	}

	r := lsb.NewReader(carrier)
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	if !r.Terminated() {
		s.logger.Printf("No terminator found in \"%s\"\n", carrierFile)
	}

	return nil
}

// Capacity returns the number of bytes of text that can be hidden in
// carrierFile.
func (s *Stega) Capacity(carrierFile string) (int, error) {
	carrier, err := readFile(carrierFile)
	if err != nil {
		return 0, err
	}

	// Reserve a unit for the terminator
	if n := lsb.Capacity(len(carrier)) - 1; n > 0 {
		return n, nil
	}
	return 0, nil
}
