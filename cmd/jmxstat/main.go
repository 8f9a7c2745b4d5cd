// Package main is the entry point for jmxstat.
package main

import "jmxstat/cmd/jmxstat/cmd"

func main() {
	cmd.Execute()
}
