package main

import "chathub/internal/app"

func main() {
	app.Run()
}
