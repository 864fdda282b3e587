package main

import "github.com/wardenlabs/warden/internal/cmd"

func main() {
	cmd.Execute()
}
