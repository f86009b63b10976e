package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/optical/pkg/optical"
	"github.com/charlie0129/optical/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		Port:           ptr.To("/dev/ttyUSB0"),
		Baud:           ptr.To(optical.DefaultBaud),
		Mode:           ptr.To(optical.ModeCurrent.String()),
		TimeoutSeconds: ptr.To(optical.DefaultTimeout.Seconds()),
		// The OptiCal answers an ADC read well within a second, so sampling
		// every 10s leaves the device idle most of the time.
		SampleSchedule:     ptr.To("@every 10s"),
		HistorySize:        ptr.To(60),
		AllowNonRootAccess: ptr.To(false),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	Port               *string  `json:"port,omitempty"`
	Baud               *int     `json:"baud,omitempty"`
	Mode               *string  `json:"mode,omitempty"`
	TimeoutSeconds     *float64 `json:"timeoutSeconds,omitempty"`
	SampleSchedule     *string  `json:"sampleSchedule,omitempty"`
	HistorySize        *int     `json:"historySize,omitempty"`
	AllowNonRootAccess *bool    `json:"allowNonRootAccess,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		Port:               ptr.To(c.Port()),
		Baud:               ptr.To(c.Baud()),
		Mode:               ptr.To(c.Mode()),
		TimeoutSeconds:     ptr.To(c.Timeout().Seconds()),
		SampleSchedule:     ptr.To(c.SampleSchedule()),
		HistorySize:        ptr.To(c.HistorySize()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
	}

	return rawConfig, nil
}

// Validate checks the values that are set.
func (c *RawFileConfig) Validate() error {
	if c.Mode != nil {
		if _, err := optical.ParseMode(*c.Mode); err != nil {
			return err
		}
	}
	if c.Baud != nil && *c.Baud <= 0 {
		return pkgerrors.Errorf("baud must be positive, got %d", *c.Baud)
	}
	if c.TimeoutSeconds != nil {
		if err := optical.CheckTimeout(secondsToDuration(*c.TimeoutSeconds)); err != nil {
			return err
		}
	}
	if c.HistorySize != nil && *c.HistorySize < 0 {
		return pkgerrors.Errorf("history size must not be negative, got %d", *c.HistorySize)
	}
	return nil
}

func (f *File) Port() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	if f.c.Port != nil {
		return *f.c.Port
	}
	return *defaultFileConfig.Port
}

func (f *File) Baud() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	if f.c.Baud != nil {
		return *f.c.Baud
	}
	return *defaultFileConfig.Baud
}

func (f *File) Mode() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	if f.c.Mode != nil {
		return *f.c.Mode
	}
	return *defaultFileConfig.Mode
}

func (f *File) Timeout() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	seconds := *defaultFileConfig.TimeoutSeconds
	if f.c.TimeoutSeconds != nil {
		seconds = *f.c.TimeoutSeconds
	}

	return secondsToDuration(seconds)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// SampleSchedule is a cron spec. Empty disables periodic sampling.
func (f *File) SampleSchedule() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	if f.c.SampleSchedule != nil {
		return *f.c.SampleSchedule
	}
	return *defaultFileConfig.SampleSchedule
}

func (f *File) HistorySize() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	if f.c.HistorySize != nil {
		return *f.c.HistorySize
	}
	return *defaultFileConfig.HistorySize
}

func (f *File) AllowNonRootAccess() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	if f.c.AllowNonRootAccess != nil {
		return *f.c.AllowNonRootAccess
	}
	return *defaultFileConfig.AllowNonRootAccess
}

func (f *File) SetPort(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.c == nil {
		panic("config is nil")
	}
	f.c.Port = &s
}

func (f *File) SetBaud(i int) error {
	if i <= 0 {
		return pkgerrors.Errorf("baud must be positive, got %d", i)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.c == nil {
		panic("config is nil")
	}
	f.c.Baud = &i
	return nil
}

func (f *File) SetMode(s string) error {
	if _, err := optical.ParseMode(s); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.c == nil {
		panic("config is nil")
	}
	f.c.Mode = &s
	return nil
}

func (f *File) SetTimeout(d time.Duration) error {
	if err := optical.CheckTimeout(d); err != nil {
		return err
	}

	seconds := d.Seconds()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.c == nil {
		panic("config is nil")
	}
	f.c.TimeoutSeconds = &seconds
	return nil
}

func (f *File) SetSampleSchedule(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.c == nil {
		panic("config is nil")
	}
	f.c.SampleSchedule = &s
}

func (f *File) SetHistorySize(i int) error {
	if i < 0 {
		return pkgerrors.Errorf("history size must not be negative, got %d", i)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.c == nil {
		panic("config is nil")
	}
	f.c.HistorySize = &i
	return nil
}

func (f *File) SetAllowNonRootAccess(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.c == nil {
		panic("config is nil")
	}

	f.c.AllowNonRootAccess = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if err := conf.Validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config in file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"port":               f.Port(),
		"baud":               f.Baud(),
		"mode":               f.Mode(),
		"timeout":            f.Timeout(),
		"sampleSchedule":     f.SampleSchedule(),
		"historySize":        f.HistorySize(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
	}
}
