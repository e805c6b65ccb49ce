// Package readingfile reads meter readings from a csv fixture file.
//
// The file needs a header line with the columns meter and amount:
//
//	meter,amount
//	101,50.5
//	102,30.2
package readingfile

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/womat/debug"
)

// Record is one line of the readings file.
type Record struct {
	Meter  int     `csv:"meter"`
	Amount float64 `csv:"amount"`
}

// Source serves the readings of a csv file.
type Source struct {
	fileName string
	readings map[int][]float64
}

func New() *Source {
	return &Source{readings: map[int][]float64{}}
}

func (s *Source) String() string {
	return "file"
}

// Open loads all readings of fileName.
func (s *Source) Open(fileName string) error {
	f, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("open readings file %v: %w", fileName, err)
	}
	defer f.Close()

	var records []*Record
	if err = gocsv.UnmarshalFile(f, &records); err != nil {
		return fmt.Errorf("decode readings file %v: %w", fileName, err)
	}

	s.fileName = fileName
	s.readings = map[int][]float64{}
	for _, r := range records {
		s.readings[r.Meter] = append(s.readings[r.Meter], r.Amount)
	}

	debug.DebugLog.Printf("file %v: %v readings of %v meters loaded\n", fileName, len(records), len(s.readings))
	return nil
}

// Readings returns the readings of a meter in file order.
func (s *Source) Readings(meterID int) ([]float64, error) {
	r := s.readings[meterID]
	out := make([]float64, len(r))
	copy(out, r)
	return out, nil
}

func (s *Source) Close() error {
	s.readings = map[int][]float64{}
	return nil
}
