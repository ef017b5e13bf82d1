package main

import (
	cmd "github.com/cyfeng16/depth-estimator/cmd/depthest"
)

func main() {
	cmd.Execute()
}
