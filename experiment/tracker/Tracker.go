// Package tracker implements Trackers, which record training metrics
// produced by agent updates and save them after training has finished
package tracker

import (
	"encoding/gob"
	"log"
	"os"
)

// Tracker keeps track of training metrics and saves them after
// training has finished
type Tracker interface {
	Track(step int, metrics map[string]float64)
	Save()
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) []float64 {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var data []float64

	err = dec.Decode(&data)
	if err != nil {
		log.Fatalf("could not decode data: %v", err)
	}

	return data
}

// Metric tracks a single named metric across updates. Updates that do
// not report the metric, e.g. off-cadence steps that return empty
// metrics, are skipped rather than recorded as zeros.
type Metric struct {
	key      string
	values   []float64
	filename string
}

// NewMetric returns a new Metric Tracker which records the metric
// named key and saves its data at the location filename
func NewMetric(key, filename string) Tracker {
	return &Metric{key: key, filename: filename}
}

// Track records the tracked metric from one update's metrics
func (m *Metric) Track(_ int, metrics map[string]float64) {
	if value, ok := metrics[m.key]; ok {
		m.values = append(m.values, value)
	}
}

// Save saves the data tracked by the Metric Tracker to disk
func (m *Metric) Save() {
	file, err := os.Create(m.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(m.values); err != nil {
		log.Fatalf("could not encode metric data: %v", err)
	}
}
