package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

var csvHeader = []string{"id", "time", "kind", "entity", "actor", "asset", "amount", "attrs"}

type CSV struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) Record(e Event) error {
	attrs, err := encodeAttrs(e.Attrs)
	if err != nil {
		return err
	}

	err = j.w.Write([]string{
		e.ID,
		e.Time.UTC().Format(time.RFC3339Nano),
		string(e.Kind),
		e.Entity,
		e.Actor,
		e.Asset,
		amountString(e.Amount),
		attrs,
	})
	if err != nil {
		return err
	}

	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

// ReadCSV parses a file written by CSV back into events.
func ReadCSV(r io.Reader) ([]Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []Event
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := time.Parse(time.RFC3339Nano, row[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: time: %w", line, err)
		}
		amount, err := parseAmount(row[6])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		attrs, err := decodeAttrs(row[7])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		out = append(out, Event{
			ID:     row[0],
			Time:   ts,
			Kind:   Kind(row[2]),
			Entity: row[3],
			Actor:  row[4],
			Asset:  row[5],
			Amount: amount,
			Attrs:  attrs,
		})
	}
}
