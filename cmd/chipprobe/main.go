// Command chipprobe runs the on-chip test structure procedures on a bench
// board and prints their readings, one value per line.
// Run with --backend mock to use simulated hardware.
package main

import "github.com/micro-nova/chipprobe/cmd/chipprobe/cmd"

func main() {
	cmd.Execute()
}
