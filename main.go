package main

import "voicecode/cmd"

func main() {
	cmd.Execute()
}
