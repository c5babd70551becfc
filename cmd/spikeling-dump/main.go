// spikeling-dump attaches to a device's serial port, resynchronizes on the
// frame header and prints decoded samples as CSV. Useful for eyeballing a
// recording without the full GUI.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.bug.st/serial"

	"github.com/OpenSourceNeuro/Spikeling/pkg/telemetry"
	"github.com/OpenSourceNeuro/Spikeling/pkg/transport"
)

func main() {
	var (
		portFlag = flag.String("p", "", "Serial port (e.g., COM3 or /dev/ttyACM0)")
		baudFlag = flag.Int("baud", transport.DefaultBaudRate, "Baud rate")
		listFlag = flag.Bool("list", false, "List available serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		ports, err := transport.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	if *portFlag == "" {
		log.Fatal("No serial port given, use -p")
	}

	port, err := serial.Open(*portFlag, &serial.Mode{BaudRate: *baudFlag})
	if err != nil {
		log.Fatalf("Failed to open serial port %s: %v", *portFlag, err)
	}
	defer port.Close()

	fmt.Println("v,stim,itotal,syn1_vm,syn1_i,syn2_vm,syn2_i,trigger")

	var (
		dec  telemetry.Decoder
		pkts []telemetry.Packet
		buf  = make([]byte, 4096)
	)
	for {
		n, err := port.Read(buf)
		if err != nil {
			if err == io.EOF {
				return
			}
			log.Fatalf("Error reading from serial port: %v", err)
		}

		pkts = dec.Feed(pkts[:0], buf[:n])
		for _, p := range pkts {
			v := p.Values()
			fmt.Fprintf(os.Stdout, "%.2f,%.0f,%.2f,%.0f,%.2f,%.0f,%.2f,%.0f\n",
				v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7])
		}
	}
}
