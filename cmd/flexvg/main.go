package main

import (
	"flexvg/internal/app"
	"flexvg/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
