package main

import "github.com/llehouerou/artistmusic/internal/cli"

func main() {
	cli.Execute()
}
