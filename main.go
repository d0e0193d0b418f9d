package main

import "github.com/dentaldiamondhn-bit/diamond-link-sub001/cmd"

func main() {
	cmd.Execute()
}
