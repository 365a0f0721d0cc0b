package main

import "github.com/nguyentranbao-ct/swipe-preview/cmd"

func main() {
	cmd.Execute()
}
