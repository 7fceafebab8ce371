// Package simulation drives a translator with the accesses of a trace.
package simulation

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/trace"
	"github.com/sarchlab/pagesim/mem/vm/translator"
	"github.com/sarchlab/pagesim/monitoring"
)

// A Simulation feeds the accesses of a trace into a translator.
type Simulation struct {
	id string

	lock         sync.Mutex
	translator   *translator.Translator
	reader       trace.Reader
	maxAddresses uint64

	dataRecorder datarecording.DataRecorder
	recorder     *trace.DBRecorder
	monitor      *monitoring.Monitor
	monitorURL   string
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Translator returns the translator being simulated.
func (s *Simulation) Translator() *translator.Translator {
	return s.translator
}

// GetDataRecorder returns the data recorder used in the simulation. It is
// nil if recording is not enabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is not enabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Run translates the accesses until the trace ends or the maximum number of
// addresses is reached. It returns the summary of the run.
func (s *Simulation) Run() (translator.Summary, error) {
	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("Trace", s.maxAddresses)
		defer s.monitor.CompleteProgressBar(bar)
	}

	for n := uint64(0); s.maxAddresses == 0 || n < s.maxAddresses; n++ {
		access, err := s.reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return s.summary(), fmt.Errorf("reading access %d: %w", n, err)
		}

		s.step(access, bar)
	}

	summary := s.summary()

	if s.recorder != nil {
		s.recorder.RecordSummary(summary)
	}

	return summary, nil
}

func (s *Simulation) step(access trace.Access, bar *monitoring.ProgressBar) {
	if bar != nil {
		bar.IncrementInProgress(1)
	}

	s.lock.Lock()
	s.translator.Translate(access.Addr)
	s.lock.Unlock()

	if bar != nil {
		bar.MoveInProgressToFinished(1)
	}
}

func (s *Simulation) summary() translator.Summary {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.translator.Summary()
}

// Terminate flushes and closes the data recorder.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	return s.dataRecorder.Close()
}
