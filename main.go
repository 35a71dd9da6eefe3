package main

import "github.com/sekitap/kitaplik/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
