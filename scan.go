package stega

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bodgit/stega/lsb"
)

const scanWorkers = 10

// Finding is a carrier found by Scan along with the text hidden in it.
type Finding struct {
	Path    string
	Message []byte
}

func (s *Stega) findCarriers(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if file != base && info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(file), ".bmp") {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (s *Stega) carrierWorker(ctx context.Context, in <-chan string, out chan<- Finding) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			carrier, err := readFile(file)
			if err != nil {
				errc <- err
				return
			}

			r := lsb.NewReader(carrier)
			message, err := ioutil.ReadAll(r)
			if err != nil {
				errc <- err
				return
			}

			if !r.Terminated() {
				s.logger.Printf("No hidden text in \"%s\"\n", file)
				continue
			}

			select {
			case out <- Finding{Path: file, Message: message}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks the directory tree at path and decodes every bitmap it finds,
// returning those that end with a terminator, sorted by path.
func (s *Stega) Scan(path string) ([]Finding, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := s.findCarriers(ctx, dir)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	found := make(chan Finding)
	var findings []Finding
	done := make(chan struct{})
	go func() {
		defer close(done)
		for f := range found {
			findings = append(findings, f)
		}
	}()

	var workers []<-chan error
	for i := 0; i < scanWorkers; i++ {
		errc, err := s.carrierWorker(ctx, files, found)
		if err != nil {
			cancelFunc()
			return nil, err
		}
		workers = append(workers, errc)
	}
	errcList = append(errcList, workers...)

	err = waitForPipeline(errcList...)
	cancelFunc()

	// Workers have all exited once their error channels are closed
	for _, errc := range workers {
		for range errc {
		}
	}
	close(found)
	<-done

	if err != nil {
		return nil, err
	}

	sort.Slice(findings, func(i, j int) bool { return findings[i].Path < findings[j].Path })

	return findings, nil
}
