package main

import "github.com/yamitzky/xlsb-go/cmd/xlsbio/cmd"

func main() {
	cmd.Execute()
}
