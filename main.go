package main

import "github.com/Yates-Labs/lehua/cmd"

func main() {
	cmd.Execute()
}
