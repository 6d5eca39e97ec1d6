// subghz-rx: listen for frames and print them.
//
// Examples:
//
//	# listen on the default SPI link until Ctrl+C
//	subghz-rx
//
//	# ten frames through a serial bridge, hiding corrupt ones
//	subghz-rx -serial /dev/ttyUSB0 -count 10 -drop-crc
package main

import (
	"context"
	"encoding/hex"
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
	count := flag.Int("count", 0, "stop after this many frames (0 = run forever)")
	dropCrc := flag.Bool("drop-crc", false, "suppress frames with a failed CRC")
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

	fmt.Printf("Listening at %d Hz, SF%d (Ctrl+C to stop)...\n", cfg.Frequency, cfg.Mod.SF)

	received := 0
	start := time.Now()
	for {
		select {
		case <-sigChan:
			fmt.Printf("\nReceived %d frames in %v\n", received, time.Since(start).Round(time.Second))
			return
		case ev := <-svc.Events():
			if ev.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: receive: %v\n", ev.Err)
				continue
			}
			p := ev.Packet
			if p.CrcErr && *dropCrc {
				continue
			}
			printFrame(p)
			received++
			if *count > 0 && received >= *count {
				fmt.Printf("Received requested %d frames\n", *count)
				return
			}
		}
	}
}

func printFrame(p *radio.Packet) {
	flags := ""
	if p.CrcErr {
		flags = " CRC-FAIL"
	}
	if p.HeaderErr {
		flags += " HDR-FAIL"
	}
	fmt.Printf("[%s] %d bytes, RSSI %d dBm, SNR %d dB%s\n",
		p.TS.Format("15:04:05.000"), len(p.Data), p.RssiDbm, p.SnrDb, flags)
	if len(p.Data) > 0 {
		fmt.Printf("  %s\n", hex.EncodeToString(p.Data))
	}
}
