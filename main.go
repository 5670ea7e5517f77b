package main

import "github.com/khanhnv2901/srvdiag/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
