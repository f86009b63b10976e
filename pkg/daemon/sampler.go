package daemon

import (
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/optical/pkg/events"
	"github.com/charlie0129/optical/pkg/optical"
)

var (
	recorder = NewMeasurementRecorder(60)
	hub      = events.NewEventHub()
)

var scheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks a sample schedule. Empty is valid and disables
// sampling.
func ValidateSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := scheduleParser.Parse(spec); err != nil {
		return pkgerrors.Wrapf(err, "invalid sample schedule %q", spec)
	}
	return nil
}

// Sampler takes a measurement on every tick of a cron schedule.
type Sampler struct {
	c *cron.Cron
}

// NewSampler parses spec. An empty spec returns a nil Sampler, which does
// nothing.
func NewSampler(spec string) (*Sampler, error) {
	if spec == "" {
		return nil, nil
	}

	schedule, err := scheduleParser.Parse(spec)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid sample schedule %q", spec)
	}

	// Skip a tick if the previous sample is still waiting on the device.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(schedule, cron.FuncJob(func() {
		_, _ = sample()
	}))

	return &Sampler{c: c}, nil
}

func (s *Sampler) Start() {
	if s == nil {
		return
	}
	logrus.Debugln("sampler starts")
	s.c.Start()
}

// Stop stops the sampler and waits for a running sample to finish.
func (s *Sampler) Stop() {
	if s == nil {
		return
	}
	<-s.c.Stop().Done()
	logrus.Debugln("sampler stopped")
}

// sample takes one measurement, records it and publishes it to subscribers.
func sample() (optical.Measurement, error) {
	var m optical.Measurement
	err := withDevice(func(d Device) error {
		var err error
		m, err = d.Measure()
		return err
	})
	if err != nil {
		logrus.Errorf("failed to take measurement: %v", err)
		hub.Publish(events.MeasurementError, events.MeasurementErrorEvent{
			Error: err.Error(),
			Ts:    time.Now().Unix(),
		})
		return m, err
	}

	recorder.AddRecord(m)
	hub.Publish(events.Measurement, m)

	logrus.WithFields(logrus.Fields{
		"value": m.Value,
		"unit":  m.Unit,
		"adc":   m.ADC,
	}).Debug("sampled")

	return m, nil
}
