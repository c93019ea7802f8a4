package main

import "github.com/aaka8h/face-attend/cmd"

func main() {
	cmd.Execute()
}
