package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/optical/pkg/config"
	"github.com/charlie0129/optical/pkg/optical"
)

var (
	conf config.Config
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/config", getConfig)
	router.GET("/version", getVersion)
	router.GET("/measurement", getMeasurement)
	router.GET("/measurement/last", getLastMeasurement)
	router.GET("/luminance", getLuminance)
	router.GET("/voltage", getVoltage)
	router.GET("/info", getInfo)
	router.GET("/references", getReferences)
	router.GET("/eeprom/:address", getEEPROM)
	router.GET("/history", getHistory)
	router.DELETE("/history", deleteHistory)
	router.GET("/events", getEvents)

	return router
}

// Run opens the OptiCal described by the config file and serves it on
// unixSocketPath until SIGINT or SIGTERM.
func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	recorder = NewMeasurementRecorder(conf.HistorySize())

	sampler, err := NewSampler(conf.SampleSchedule())
	if err != nil {
		return err
	}

	// Open the OptiCal. This calibrates it and reads its references, so
	// the device must be connected before the daemon starts.
	o, err := optical.Open(optical.SerialConfig{
		Port:    conf.Port(),
		Baud:    conf.Baud(),
		Timeout: conf.Timeout(),
	}, conf.Mode())
	if err != nil {
		return err
	}
	dev = o
	logrus.WithFields(logrus.Fields{
		"mode":       o.Mode(),
		"references": o.References(),
	}).Info("OptiCal ready")

	// Receive SIGHUP to reload config. The device is only opened once, so
	// port and mode changes need a restart.
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(conf.LogrusFields()).Infof("config reloaded, restart the daemon to apply port, mode or schedule changes")
		}
	}()

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// A daemon that died without cleaning up leaves its socket behind.
	err = removeStaleSocket(unixSocketPath)
	if err != nil {
		closeDevice()
		return err
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		closeDevice()
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			closeDevice()
			return pkgerrors.Wrapf(err, "failed to chmod %s", unixSocketPath)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	sampler.Start()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("stopping sampler")
	sampler.Stop()

	// End event streams, or Shutdown would wait for them.
	hub.Close()

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	closeDevice()

	logrus.Info("exiting")
	return nil
}

func closeDevice() {
	logrus.Info("closing OptiCal connection")
	err := withDevice(func(d Device) error {
		return d.Close()
	})
	if err != nil {
		logrus.Errorf("failed to close OptiCal connection: %v", err)
	}
}

// removeStaleSocket removes the socket file at path unless another daemon
// is still answering on it.
func removeStaleSocket(path string) error {
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err == nil {
		_ = conn.Close()
		return pkgerrors.Errorf("another daemon is already listening on %s", path)
	}

	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(err, "failed to remove stale socket %s", path)
	}
	if err == nil {
		logrus.Warnf("removed stale socket %s", path)
	}

	return nil
}
