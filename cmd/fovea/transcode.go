package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"pipelined.dev/fovea"
	"pipelined.dev/fovea/ffmpeg"
	"pipelined.dev/fovea/gaze"
	"pipelined.dev/fovea/log"
	"pipelined.dev/fovea/media"
)

// transcode processes every file in the list sequentially, one
// pipeline per file. Multi-file state never crosses a pipeline.
func transcode(cfg config, listPath string) error {
	files, err := parseLines(listPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: no input files", listPath)
	}
	logger := log.GetLogger()
	for _, file := range files {
		if err := transcodeFile(cfg, file, logger); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

func transcodeFile(cfg config, path string, logger fovea.Logger) error {
	src, err := ffmpeg.OpenSource(path)
	if err != nil {
		return err
	}
	dec, err := ffmpeg.NewDecoder(src)
	if err != nil {
		src.Close()
		return err
	}
	// the encoder derives its parameters from the decoder's resolved
	// stream info, so it is initialized strictly after it.
	enc, err := ffmpeg.NewEncoder(dec, ffmpeg.Profile(cfg.Profile))
	if err != nil {
		dec.Close()
		src.Close()
		return err
	}
	writer, err := ffmpeg.NewWriter(path+cfg.OutputSuffix, enc)
	if err != nil {
		enc.Close()
		dec.Close()
		src.Close()
		return err
	}

	limits := gaze.X264Limits()
	p, err := fovea.New(fovea.Routing{
		Source:  src,
		Decoder: dec,
		Encoder: enc,
		Foveation: gaze.Func(func(width, height int) media.FoveationDescriptor {
			return limits.Clamp(media.FoveationDescriptor{
				X:      cfg.Gaze.X,
				Y:      cfg.Gaze.Y,
				Spread: cfg.Gaze.Spread,
				Offset: cfg.Gaze.Offset,
			})
		}),
	},
		fovea.WithName(path),
		fovea.WithLogger(logger),
		fovea.WithCapacity(cfg.Capacity),
		fovea.WithLagCapacity(cfg.LagCapacity),
	)
	if err != nil {
		writer.Close()
		enc.Close()
		dec.Close()
		src.Close()
		return err
	}

	a := p.Run()
	lagc := make(chan lagSummary, 1)
	go func() {
		lagc <- summarizeLag(p)
	}()
	writeErr := writer.Drain(p.Packets())
	if writeErr != nil {
		// keep draining so the encoder can terminate through the
		// marker; the write error is reported after Wait.
		ffmpeg.Discard(p.Packets())
	}
	lag := <-lagc
	if err := a.Wait(); err != nil {
		writer.Close()
		return err
	}
	if writeErr != nil {
		writer.Close()
		return writeErr
	}
	if err := writer.Close(); err != nil {
		return err
	}
	logger.Info("transcoded ", path, ": ", lag)
	return nil
}

// lagSummary aggregates the encode-path lag samples of one pipeline.
type lagSummary struct {
	frames int
	span   time.Duration
}

func (s lagSummary) String() string {
	if s.frames < 2 {
		return fmt.Sprintf("%d frames", s.frames)
	}
	rate := float64(s.frames-1) / s.span.Seconds()
	return fmt.Sprintf("%d frames in %v (%.1f fps encode path)", s.frames, s.span, rate)
}

func summarizeLag(p *fovea.Pipeline) lagSummary {
	var (
		s     lagSummary
		first time.Time
		last  time.Time
	)
	for {
		sample, ok := p.Lag().Extract().Get()
		if !ok {
			break
		}
		if s.frames == 0 {
			first = sample.At
		}
		last = sample.At
		s.frames++
	}
	s.span = last.Sub(first)
	return s
}

// parseLines returns the non-empty lines of the file at path.
func parseLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
