package main

import "ship-swift-backend/cmd"

func main() {
	cmd.Run()
}
