package main

import "booking-gateway/cmd"

func main() {
	cmd.Execute()
}
