// subghz-tx: transmit frames through the sub-GHz radio.
//
// Examples:
//
//	# one frame of text over the default SPI link
//	subghz-tx -msg "hello"
//
//	# ten hex frames, one per second, through a serial bridge
//	subghz-tx -serial /dev/ttyUSB0 -hex DEADBEEF -count 10 -gap 1s
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
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
	msg := flag.String("msg", "", "frame payload as text")
	hexStr := flag.String("hex", "", "frame payload as hex")
	count := flag.Int("count", 1, "frames to send")
	gap := flag.Duration("gap", time.Second, "pause between frames")
	flag.Parse()

	data, err := payload(*msg, *hexStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

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

	for i := 0; i < *count; i++ {
		if i > 0 {
			time.Sleep(*gap)
		}
		if err := svc.Send(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: send %d/%d: %v\n", i+1, *count, err)
			os.Exit(1)
		}
		fmt.Printf("sent %d/%d (%d bytes)\n", i+1, *count, len(data))
	}
}

func payload(msg, hexStr string) ([]byte, error) {
	switch {
	case msg != "" && hexStr != "":
		return nil, fmt.Errorf("use -msg or -hex, not both")
	case hexStr != "":
		return hex.DecodeString(hexStr)
	case msg != "":
		return []byte(msg), nil
	default:
		return nil, fmt.Errorf("nothing to send, use -msg or -hex")
	}
}
