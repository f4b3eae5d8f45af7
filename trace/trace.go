package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/nstehr/gridlife/ipc"
	"github.com/nstehr/gridlife/model"
	"github.com/nstehr/gridlife/sim"
)

// Recorder writes a zstd-compressed stream of framed envelopes: one hello,
// then one tick envelope per recorded tick.
type Recorder struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

// Create opens path for writing and records the hello envelope.
func Create(path string, hello ipc.HelloMessage) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace: create %s: %w", path, err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("trace: zstd writer: %w", err)
	}
	r := &Recorder{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}
	if err := r.write(ipc.TypeHello, hello); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// RecordTick appends one tick with its full world state.
func (r *Recorder) RecordTick(report sim.TickReport, state model.WorldState) error {
	return r.write(ipc.TypeTick, ipc.TickMessage{Report: report, State: &state})
}

func (r *Recorder) write(msgType string, v any) error {
	env, err := ipc.NewEnvelope(msgType, v)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return errors.New("trace: recorder closed")
	}
	if err := ipc.WriteEnvelope(r.w, env); err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	if msgType == ipc.TypeTick {
		r.n++
	}
	return nil
}

// Ticks is the number of tick envelopes written so far.
func (r *Recorder) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Close flushes the stream and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.w != nil {
		errs = append(errs, r.w.Flush())
		r.w = nil
	}
	if r.enc != nil {
		errs = append(errs, r.enc.Close())
		r.enc = nil
	}
	if r.f != nil {
		errs = append(errs, r.f.Close())
		r.f = nil
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("trace: close: %w", err)
	}
	return nil
}

// Reader walks a trace written by Recorder.
type Reader struct {
	f     *os.File
	dec   *zstd.Decoder
	r     *bufio.Reader
	Hello ipc.HelloMessage
}

// Open reads the hello envelope and positions the reader at the first tick.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("trace: zstd reader: %w", err)
	}
	tr := &Reader{f: f, dec: dec, r: bufio.NewReader(dec)}

	env, err := ipc.ReadEnvelope(tr.r)
	if err != nil {
		tr.Close()
		return nil, fmt.Errorf("trace: read hello: %w", err)
	}
	if env.Type != ipc.TypeHello {
		tr.Close()
		return nil, fmt.Errorf("trace: expected %s envelope, got %q", ipc.TypeHello, env.Type)
	}
	if err := env.Decode(&tr.Hello); err != nil {
		tr.Close()
		return nil, fmt.Errorf("trace: %w", err)
	}
	return tr, nil
}

// Next returns the next tick. It returns io.EOF after the last one.
func (tr *Reader) Next() (ipc.TickMessage, error) {
	for {
		env, err := ipc.ReadEnvelope(tr.r)
		if err == io.EOF {
			return ipc.TickMessage{}, io.EOF
		}
		if err != nil {
			return ipc.TickMessage{}, fmt.Errorf("trace: %w", err)
		}
		if env.Type != ipc.TypeTick {
			continue
		}
		var tm ipc.TickMessage
		if err := env.Decode(&tm); err != nil {
			return ipc.TickMessage{}, fmt.Errorf("trace: %w", err)
		}
		return tm, nil
	}
}

func (tr *Reader) Close() error {
	tr.dec.Close()
	return tr.f.Close()
}
