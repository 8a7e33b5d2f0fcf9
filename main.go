package main

import "premises-access-control/cmd"

func main() {
	cmd.Execute()
}
