/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dialogo-im/dialogo/client"
	"github.com/dialogo-im/dialogo/log"
	"github.com/dialogo-im/dialogo/storage"
	"github.com/dialogo-im/dialogo/storage/measured"
	"github.com/dialogo-im/dialogo/version"
	"github.com/pkg/errors"
)

const defaultShutDownWaitTime = time.Duration(5) * time.Second

var logoStr = []string{
	`       .___.__       .__                       `,
	`     __| _/|__|____  |  |   ____   ____   ____ `,
	`    / __ | |  \__  \ |  |  /  _ \ / ___\ /  _ \`,
	`   / /_/ | |  |/ __ \|  |_(  <_> ) /_/  >  <_> )`,
	`   \____ | |__(____  /____/\____/\___  / \____/ `,
	`        \/         \/           /_____/         `,
}

const usageStr = `
Usage: dialogo [options]

Client Options:
    -c, --config <file>    Configuration file path
Common Options:
    -h, --help             Show this message
    -v, --version          Show version
`

// Application encapsulates a dialogo client application.
type Application struct {
	output           io.Writer
	args             []string
	cli              *client.Client
	waitStopCh       chan os.Signal
	shutDownWaitSecs time.Duration
}

// New returns a runnable application given an output and a command line arguments array.
func New(output io.Writer, args []string) *Application {
	return &Application{
		output:           output,
		args:             args,
		waitStopCh:       make(chan os.Signal, 1),
		shutDownWaitSecs: defaultShutDownWaitTime,
	}
}

// Run runs dialogo application until either a stop signal is received or an error occurs.
func (a *Application) Run() error {
	if len(a.args) == 0 {
		return errors.New("empty command-line arguments")
	}
	var configFile string
	var showVersion, showUsage bool

	fs := flag.NewFlagSet("dialogo", flag.ExitOnError)
	fs.SetOutput(a.output)

	fs.BoolVar(&showUsage, "help", false, "Show this message")
	fs.BoolVar(&showUsage, "h", false, "Show this message")
	fs.BoolVar(&showVersion, "version", false, "Print version information.")
	fs.BoolVar(&showVersion, "v", false, "Print version information.")
	fs.StringVar(&configFile, "config", "/etc/dialogo/dialogo.yml", "Configuration file path.")
	fs.StringVar(&configFile, "c", "/etc/dialogo/dialogo.yml", "Configuration file path.")
	fs.Usage = func() {
		for i := range logoStr {
			_, _ = fmt.Fprintf(a.output, "%s\n", logoStr[i])
		}
		_, _ = fmt.Fprintf(a.output, "%s\n", usageStr)
	}
	_ = fs.Parse(a.args[1:])

	// print usage
	if showUsage {
		fs.Usage()
		return nil
	}
	// print version
	if showVersion {
		_, _ = fmt.Fprintf(a.output, "dialogo version: %v\n", version.ApplicationVersion)
		return nil
	}
	// load configuration
	var cfg Config
	err := cfg.FromFile(configFile)
	if err != nil {
		return err
	}
	// create PID file
	if err := a.createPIDFile(cfg.PIDFile); err != nil {
		return err
	}
	// initialize logger
	log.Initialize(&cfg.Logger)

	// show dialogo's fancy logo
	a.printLogo()

	// initialize storage
	repContainer, err := storage.New(&cfg.Storage)
	if err != nil {
		return err
	}
	repContainer = measured.New(repContainer)

	// initialize client
	a.cli = client.New(&cfg.Account, repContainer)

	go a.consumeEvents(a.cli.SubscribeEvents())

	if err := a.cli.Connect(context.Background()); err != nil {
		log.Errorf("initial connection failed: %v", err)
		if !cfg.Account.AutoReconnect {
			return err
		}
	}

	// ...wait for stop signal to shutdown
	sig := a.waitForStopSignal()
	log.Infof("received %s signal... shutting down...", sig.String())

	return a.gracefullyShutdown(repContainer.Close)
}

func (a *Application) consumeEvents(events <-chan client.Event) {
	for ev := range events {
		switch ev.Type {
		case client.Connected:
			info := ev.Info.(*client.ConnectedEventInfo)
			log.Infof("signed in as %s", info.JID)

		case client.Disconnected:
			info := ev.Info.(*client.DisconnectedEventInfo)
			log.Infof("signed out: %s", info.Reason)

		case client.MessageReceived:
			info := ev.Info.(*client.MessageEventInfo)
			log.Infof("message from %s: %s", info.From, info.Body)

		case client.ConnectionError, client.AuthenticationError, client.StreamError:
			info := ev.Info.(*client.ErrorEventInfo)
			log.Errorf("%s: %s", ev.Type, info.Error)

		default:
			log.Debugf("event: %s", ev.Type)
		}
	}
}

func (a *Application) createPIDFile(pidFile string) error {
	if len(pidFile) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(pidFile), os.ModePerm); err != nil {
		return err
	}
	file, err := os.Create(pidFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	currentPid := os.Getpid()
	if _, err := file.WriteString(strconv.FormatInt(int64(currentPid), 10)); err != nil {
		return err
	}
	return nil
}

func (a *Application) printLogo() {
	for i := range logoStr {
		log.Infof("%s", logoStr[i])
	}
	log.Infof("")
	log.Infof("dialogo %v\n", version.ApplicationVersion)
}

func (a *Application) waitForStopSignal() os.Signal {
	signal.Notify(a.waitStopCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	return <-a.waitStopCh
}

func (a *Application) gracefullyShutdown(closeStorage func(ctx context.Context) error) error {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(a.shutDownWaitSecs))
	defer cancel()

	if err := a.cli.Shutdown(ctx); err != nil {
		log.Warnf("%v", err)
	}
	if err := closeStorage(ctx); err != nil {
		log.Warnf("%v", err)
	}
	log.Shutdown()
	return nil
}
