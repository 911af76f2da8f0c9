package main

import "github.com/thomaswlyons-a11y/Chestpain28012026/cmd"

func main() {
	cmd.Execute()
}
