// subghz-cad: probe the channel for activity before talking on it.
//
// Examples:
//
//	# one probe per second until Ctrl+C
//	subghz-cad
//
//	# twenty probes, two per second, through a serial bridge
//	subghz-cad -serial /dev/ttyUSB0 -interval 500ms -count 20
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subghz-go/cmd/internal/cli"
	"subghz-go/drivers/subghz"
	"subghz-go/services/radio"
)

func main() {
	var link cli.LinkFlags
	var prof cli.RadioFlags
	link.Register(flag.CommandLine)
	prof.Register(flag.CommandLine)
	interval := flag.Duration("interval", time.Second, "time between probes")
	count := flag.Int("count", 0, "number of probes (0 = run forever)")
	bound := flag.Duration("bound", time.Second, "wait bound on one probe")
	flag.Parse()

	cfg, err := prof.Config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	conn, busCfg, err := link.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	dev, err := subghz.New(conn, busCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	svc := radio.New(dev, cfg)
	if err := svc.Bringup(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := svc.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		cancel()
		<-svc.Done()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(*interval)
	defer tick.Stop()

	probes, hits := 0, 0
	for {
		select {
		case <-sigChan:
			fmt.Printf("\n%d probes, %d with activity\n", probes, hits)
			return
		case <-tick.C:
			detected, err := svc.Detect(*bound)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: probe: %v\n", err)
				os.Exit(1)
			}
			probes++
			state := "clear"
			if detected {
				state = "active"
				hits++
			}
			fmt.Printf("[%s] channel %s\n", time.Now().Format("15:04:05.000"), state)
			if *count > 0 && probes >= *count {
				fmt.Printf("%d probes, %d with activity\n", probes, hits)
				return
			}
		}
	}
}
