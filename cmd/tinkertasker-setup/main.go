package main

import "github.com/tinkertasker/tinkertasker/run"

func main() {
	run.SetupMain()
}
