package main

import "github.com/inovacc/gitboard/cmd"

func main() {
	cmd.Execute()
}
