package main

import "skirmish/engine"

func main() {
	engine.Play()
}
