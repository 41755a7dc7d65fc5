// Package main is the entry point for the uptime monitor.
package main

import "uptime-monitor/cmd/upmon/cmd"

func main() {
	cmd.Execute()
}
