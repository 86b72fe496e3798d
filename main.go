package main

import "vodworks/cmd"

func main() {
	cmd.Execute()
}
