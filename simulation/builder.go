package simulation

import (
	"errors"
	"fmt"

	"github.com/rs/xid"
	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/trace"
	"github.com/sarchlab/pagesim/mem/vm/translator"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/sim/hooking"
)

var (
	// ErrNoTranslator is returned when building a simulation without a
	// translator.
	ErrNoTranslator = errors.New("no translator is given")

	// ErrNoTrace is returned when building a simulation without a trace.
	ErrNoTrace = errors.New("no trace is given")
)

// Builder can be used to build a simulation.
type Builder struct {
	translator     *translator.Translator
	reader         trace.Reader
	hooks          []hooking.Hook
	maxAddresses   uint64
	recordOn       bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithTranslator sets the translator that the accesses are fed into.
func (b Builder) WithTranslator(t *translator.Translator) Builder {
	b.translator = t
	return b
}

// WithTrace sets where the accesses are read from.
func (b Builder) WithTrace(r trace.Reader) Builder {
	b.reader = r
	return b
}

// WithHook attaches a hook to the translator.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

// WithMaxAddresses stops the simulation after the given number of accesses.
// 0 means that the whole trace is processed.
func (b Builder) WithMaxAddresses(n uint64) Builder {
	b.maxAddresses = n
	return b
}

// WithRecording records every translation into a SQLite database.
func (b Builder) WithRecording() Builder {
	b.recordOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// It implies WithRecording.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordOn = true
	b.outputFileName = filename

	return b
}

// WithMonitoring starts a monitoring server for the simulation.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	if b.translator == nil {
		return nil, ErrNoTranslator
	}

	if b.reader == nil {
		return nil, ErrNoTrace
	}

	s := &Simulation{
		id:           xid.New().String(),
		translator:   b.translator,
		reader:       b.reader,
		maxAddresses: b.maxAddresses,
	}

	for _, h := range b.hooks {
		s.translator.AcceptHook(h)
	}

	if b.recordOn {
		err := b.buildRecorder(s)
		if err != nil {
			return nil, err
		}
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterTranslator(s.translator.Name(), s.translator, &s.lock)
		s.monitorURL = s.monitor.StartServer()
	}

	return s, nil
}

func (b Builder) buildRecorder(s *Simulation) error {
	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "pagesim_" + s.id
	}

	dataRecorder, err := datarecording.New(outputPath)
	if err != nil {
		return fmt.Errorf("creating recorder: %w", err)
	}

	s.dataRecorder = dataRecorder
	s.recorder = trace.NewDBRecorder(dataRecorder)
	s.translator.AcceptHook(s.recorder)

	return nil
}
