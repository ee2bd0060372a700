package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/histrank/pkg/config"
	"github.com/bastiangx/histrank/pkg/histfile"
	"github.com/bastiangx/histrank/pkg/server"
	"github.com/bastiangx/histrank/pkg/session"
	"github.com/charmbracelet/log"
)

const Version = "0.4.0-beta"

func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func main() {
	sigHandler()
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	histFile := flag.String("f", "", "History file to serve (default $HISTFILE, then ~/.bash_history)")
	configPath := flag.String("config", "", "Custom config file path")

	flag.Parse()

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, cfgPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Warnf("config load: %v -- using builtin defaults", err)
		cfg = config.DefaultConfig()
	}
	if cfgPath != "" {
		log.Debugf("Using config file: (%s)", cfgPath)
	}

	path := *histFile
	if path == "" {
		path = cfg.History.File
	}
	if path == "" {
		path, err = histfile.DefaultPath()
		if err != nil {
			log.Fatalf("Failed to locate a history file: %v", err)
		}
	}

	store, err := histfile.Load(path)
	if err != nil {
		log.Fatalf("Failed to load history: %v", err)
	}

	// No injector: the server has no controlling shell to flush into,
	// clients get the reload directive in remove responses instead.
	srv := server.NewServer(session.New(store, nil), cfg)

	showStartupInfo(store)

	log.Debug("spawning IPC")
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process.
// Everything lands on stderr; stdout belongs to the msgpack stream.
func showStartupInfo(store *histfile.Store) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("=========")
	println(" hrserve ")
	println("=========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("history: ( %s )", store.Path())
	log.Infof("format: %s", store.Format())
	log.Infof("entries: %d", store.Len())
	log.Info("status: ready")
	println("=========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
