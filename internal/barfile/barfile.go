// Package barfile reads and writes the per-symbol daily bar files.
//
// Layout, all integers and floats little-endian:
//
//	uint64 bar count
//	per bar:
//	  uint64 date length, date bytes (YYYY-MM-DD)
//	  float64 open, high, low, close, volume
package barfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxDateLen rejects corrupt length prefixes before allocating
const maxDateLen = 64

// Bar is one day of price data
type Bar struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Encode writes bars to w
func Encode(w io.Writer, bars []Bar) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(bars))); err != nil {
		return err
	}
	for _, b := range bars {
		if err := binary.Write(w, binary.LittleEndian, uint64(len(b.Date))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, b.Date); err != nil {
			return err
		}
		values := [5]float64{b.Open, b.High, b.Low, b.Close, b.Volume}
		if err := binary.Write(w, binary.LittleEndian, values); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads bars written by Encode
func Decode(r io.Reader) ([]Bar, error) {
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read bar count: %w", err)
	}

	bars := make([]Bar, 0, min(count, 1<<16))
	for i := uint64(0); i < count; i++ {
		var dateLen uint64
		if err := binary.Read(r, binary.LittleEndian, &dateLen); err != nil {
			return nil, fmt.Errorf("read bar %d: %w", i, err)
		}
		if dateLen > maxDateLen {
			return nil, fmt.Errorf("read bar %d: date length %d too large", i, dateLen)
		}
		date := make([]byte, dateLen)
		if _, err := io.ReadFull(r, date); err != nil {
			return nil, fmt.Errorf("read bar %d: %w", i, err)
		}
		var values [5]float64
		if err := binary.Read(r, binary.LittleEndian, &values); err != nil {
			return nil, fmt.Errorf("read bar %d: %w", i, err)
		}
		bars = append(bars, Bar{
			Date:   string(date),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}
	return bars, nil
}

// WriteFile writes bars to path. The data goes to a temporary file in the same
// directory first so a failed write never leaves a truncated file behind.
func WriteFile(path string, bars []Bar) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}

	w := bufio.NewWriter(tmp)
	if err := Encode(w, bars); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile reads the bars stored at path
func ReadFile(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(bufio.NewReader(f))
}
