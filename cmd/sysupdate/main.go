package main

import app "github.com/kenryu42/tmuxifier-session-scripts/internal/app"

func main() {
	app.Run()
}
