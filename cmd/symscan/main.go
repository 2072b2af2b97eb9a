package main

import "github.com/MeKo-Tech/symscan/cmd/symscan/cmd"

func main() {
	cmd.Execute()
}
